package config

// NewLayoutForTest creates a Layout config for testing purposes
func NewLayoutForTest(path string, integrated bool, noPlanTokens []string) *Layout {
	return &Layout{
		path:         path,
		integrated:   integrated,
		noPlanTokens: noPlanTokens,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}
