package internal

// Version is the current release of denglish.
const Version = "0.3.0"
