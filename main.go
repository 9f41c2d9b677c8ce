package main

// Version, Commit and Date are set at build time via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func main() {
	Execute(NewRootCommand())
}
