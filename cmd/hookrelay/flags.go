package main

// GlobalFlags holds minimal global/persistent flags for CLI commands
type GlobalFlags struct {
	ConfigPath string // Only config path for CLI commands
}

// RunFlags mirrors the argument vector the launcher passes to the
// hidden run subcommand.
type RunFlags struct {
	SessionFile string
	SessionID   string
	Project     string
	OutputDir   string
	Log         string
	Extractor   string
	PipeScript  string
	EndpointVar string
}
