package config

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
	}
}

// NewStorageForTest creates a Storage config for testing purposes
func NewStorageForTest(backend, path string) *Storage {
	return &Storage{
		backend: backend,
		path:    path,
	}
}

// NewExecutorForTest creates an Executor config for testing purposes
func NewExecutorForTest(command string, allow ...string) *Executor {
	return &Executor{
		command: command,
		allow:   allow,
	}
}

// NewAppForTest creates an App config for testing purposes
func NewAppForTest(path string) *App {
	return &App{path: path}
}
