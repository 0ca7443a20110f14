// Package hcl_adapter reads boardsmith settings files written in HCL and
// translates them into the format-agnostic config.Model.
//
// A settings file looks like:
//
//	arduino_root    = "/opt/arduino-1.0.5"
//	arduino_version = "1.0.5"
//	compile_root    = "~/.boardsmith"
//	build_tool      = ["make", "-s"]
//
//	library "Adafruit_GFX" {
//	  depends_on = ["SPI"]
//	}
package hcl_adapter
