package config

// DefaultPageLines is the notes-export pagination threshold, in lines.
const DefaultPageLines = 54

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Service: ServiceConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 120,
		},
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
		},
		Library: LibraryConfig{Dir: ""},
		Export: ExportConfig{
			OutputDir: "",
			PageLines: DefaultPageLines,
		},
		Chat: ChatConfig{
			Greeting: "Hi! I am your lecture assistant. Ask me anything about this lecture.",
		},
	}
}
