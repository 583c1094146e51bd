package cli

var (
	RenderReport      = renderReport
	RenderSimulations = renderSimulations
	WatchFile         = watchFile
)
