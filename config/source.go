package config

// Source indicates where a resolved value came from.
type Source string

// Value source constants, in descending priority order.
const (
	// SourceSecretStore indicates the value came from the external secret store.
	SourceSecretStore Source = "secret-store"

	// SourceEnv indicates the value came from a service environment variable.
	SourceEnv Source = "env"

	// SourceFile indicates the value came from the service config file.
	SourceFile Source = "file"

	// SourceShared indicates the value came from the shared config file or
	// a shared environment variable.
	SourceShared Source = "shared"

	// SourceUnset indicates no source defined the value.
	SourceUnset Source = ""
)
