package version

// Version is overridden at build time with -ldflags "-X assistante-suite/version.Version=...".
var Version = "v1.0.0-dev"
