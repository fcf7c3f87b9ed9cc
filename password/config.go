package password

import "fmt"

// Algorithm identifies a password hashing algorithm. The set is closed:
// new algorithms are added here, never discovered at runtime.
type Algorithm string

const (
	// AlgorithmArgon2id is the current preferred algorithm. All new hashes
	// are produced with it.
	AlgorithmArgon2id Algorithm = "argon2id"

	// AlgorithmBcrypt is supported for verification of existing hashes only.
	AlgorithmBcrypt Algorithm = "bcrypt"

	// AlgorithmSHA256 is a legacy salted fast hash, supported for
	// verification only so pre-migration credentials keep working.
	AlgorithmSHA256 Algorithm = "sha256"
)

// CurrentAlgorithm is the tag applied to every newly produced hash.
const CurrentAlgorithm = AlgorithmArgon2id

// Config configures password hashing parameters.
// Loadable from YAML/env via mapstructure tags.
type Config struct {
	// Argon2Time is the number of iterations for argon2id (default: 1).
	Argon2Time uint32 `mapstructure:"argon2_time"`

	// Argon2Memory is the memory usage in KiB for argon2id (default: 65536 = 64MB).
	Argon2Memory uint32 `mapstructure:"argon2_memory"`

	// Argon2Threads is the parallelism for argon2id (default: 4).
	Argon2Threads uint8 `mapstructure:"argon2_threads"`

	// BcryptCost is used only when verifying legacy bcrypt hashes produced
	// elsewhere; kept configurable for test fixtures (default: 12).
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

// ApplyDefaults sets OWASP-recommended argon2id parameters for zero values.
func (c *Config) ApplyDefaults() {
	if c.Argon2Time == 0 {
		c.Argon2Time = 1
	}
	if c.Argon2Memory == 0 {
		c.Argon2Memory = 64 * 1024
	}
	if c.Argon2Threads == 0 {
		c.Argon2Threads = 4
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("bcrypt_cost must be between 4 and 31 (got: %d)", c.BcryptCost)
	}
	return nil
}
