package ports

// FileOpener hands a file or URL to the platform's default application
type FileOpener interface {
	Open(target string) error
	// Detect returns the name of the handler Open would use
	Detect() (string, error)
}
