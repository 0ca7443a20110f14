package config

// Model is what a configuration source contributes. Zero-valued fields are
// treated as unset and leave the underlying setting untouched.
type Model struct {
	ArduinoRoot    string
	ArduinoVersion int
	CompileRoot    string
	ToolRoot       string
	BuildTool      []string
	// Libraries maps a library name to its direct dependencies. An entry
	// replaces the built-in declaration for that library.
	Libraries map[string][]string
}

// Merge overlays other onto m; set fields in other win.
func (m *Model) Merge(other *Model) {
	if other == nil {
		return
	}
	if other.ArduinoRoot != "" {
		m.ArduinoRoot = other.ArduinoRoot
	}
	if other.ArduinoVersion != 0 {
		m.ArduinoVersion = other.ArduinoVersion
	}
	if other.CompileRoot != "" {
		m.CompileRoot = other.CompileRoot
	}
	if other.ToolRoot != "" {
		m.ToolRoot = other.ToolRoot
	}
	if len(other.BuildTool) > 0 {
		m.BuildTool = append([]string(nil), other.BuildTool...)
	}
	if len(other.Libraries) > 0 && m.Libraries == nil {
		m.Libraries = make(map[string][]string, len(other.Libraries))
	}
	for name, deps := range other.Libraries {
		m.Libraries[name] = append([]string(nil), deps...)
	}
}
