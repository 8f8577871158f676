package version

// Version is the agent version advertised in the Capabilities message.
// Overridden at release time with -ldflags "-X .../internal/version.Version=x.y.z".
var Version = "0.1.0"
