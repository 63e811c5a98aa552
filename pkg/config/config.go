package config

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/hashing"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/util"
)

// Environment variable names for the merkle tool
const (
	EnvMerkleHashType        = "MERKLE_HASH_TYPE"
	EnvMerkleLeafEncoding    = "MERKLE_LEAF_ENCODING"
	EnvMerkleVerbose         = "MERKLE_VERBOSE"
	EnvMerklePort            = "MERKLE_PORT"
	EnvMerkleRateLimit       = "MERKLE_RATE_LIMIT"
	EnvMerkleRateBurst       = "MERKLE_RATE_BURST"
	EnvMerklePersistenceType = "MERKLE_PERSISTENCE_TYPE"
	EnvMerkleDataPath        = "MERKLE_DATA_PATH"
	EnvMerkleRedisAddress    = "MERKLE_REDIS_ADDRESS"
	EnvMerkleRedisPassword   = "MERKLE_REDIS_PASSWORD"
	EnvMerkleRedisDB         = "MERKLE_REDIS_DB"
	EnvMerkleRedisKeyPrefix  = "MERKLE_REDIS_KEY_PREFIX"
)

// Defaults
const (
	DefaultPort       = 8080
	DefaultRateLimit  = 50.0
	DefaultRateBurst  = 100
	DefaultDataPath   = "./data/merkle"
	DefaultReportPath = "merkle.tree"
	MaxRedisDB        = 15
)

type PersistenceType string

func (p PersistenceType) String() string {
	return string(p)
}

const (
	PersistenceTypeNone   PersistenceType = "none"
	PersistenceTypeMemory PersistenceType = "memory"
	PersistenceTypeBadger PersistenceType = "badger"
	PersistenceTypeRedis  PersistenceType = "redis"
)

// ParsePersistenceType converts a user supplied name into a PersistenceType. Empty means none.
func ParsePersistenceType(name string) (PersistenceType, error) {
	switch PersistenceType(strings.ToLower(strings.TrimSpace(name))) {
	case "", PersistenceTypeNone:
		return PersistenceTypeNone, nil
	case PersistenceTypeMemory:
		return PersistenceTypeMemory, nil
	case PersistenceTypeBadger:
		return PersistenceTypeBadger, nil
	case PersistenceTypeRedis:
		return PersistenceTypeRedis, nil
	default:
		return "", fmt.Errorf("unsupported persistence type: %s", name)
	}
}

// GetSupportedPersistenceTypesString returns supported persistence types for CLI help
func GetSupportedPersistenceTypesString() string {
	return fmt.Sprintf("%s, %s, %s, %s",
		PersistenceTypeNone, PersistenceTypeMemory, PersistenceTypeBadger, PersistenceTypeRedis)
}

// PersistenceConfig selects and configures the report store
type PersistenceConfig struct {
	Type PersistenceType `json:"type" yaml:"type"`

	// Badger
	DataPath string `json:"data_path" yaml:"dataPath"`

	// Redis
	RedisAddress   string `json:"redis_address" yaml:"redisAddress"`
	RedisPassword  string `json:"-" yaml:"-"`
	RedisDB        int    `json:"redis_db" yaml:"redisDB"`
	RedisKeyPrefix string `json:"redis_key_prefix" yaml:"redisKeyPrefix"`
}

// Validate validates the persistence configuration
func (pc *PersistenceConfig) Validate() error {
	allErrors := pc.validate(field.NewPath("persistence"))
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

func (pc *PersistenceConfig) validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList

	switch pc.Type {
	case PersistenceTypeNone, PersistenceTypeMemory:
	case PersistenceTypeBadger:
		if pc.DataPath == "" {
			allErrors = append(allErrors, field.Required(path.Child("dataPath"), "dataPath is required for badger persistence"))
		}
	case PersistenceTypeRedis:
		if pc.RedisAddress == "" {
			allErrors = append(allErrors, field.Required(path.Child("redisAddress"), "redisAddress is required for redis persistence"))
		}
		if pc.RedisDB < 0 || pc.RedisDB > MaxRedisDB {
			allErrors = append(allErrors, field.Invalid(path.Child("redisDB"), pc.RedisDB, fmt.Sprintf("must be between 0-%d", MaxRedisDB)))
		}
	default:
		allErrors = append(allErrors, field.NotSupported(path.Child("type"), pc.Type,
			[]string{string(PersistenceTypeNone), string(PersistenceTypeMemory), string(PersistenceTypeBadger), string(PersistenceTypeRedis)}))
	}

	return allErrors
}

// ToolConfig represents the complete configuration for the merkle tool and proof server
type ToolConfig struct {
	HashType     hashing.HashType  `json:"hash_type"`
	LeafEncoding util.LeafEncoding `json:"leaf_encoding"`

	// Server settings
	Port      int     `json:"port"`
	RateLimit float64 `json:"rate_limit"` // requests per second, 0 disables limiting
	RateBurst int     `json:"rate_burst"`

	Persistence PersistenceConfig `json:"persistence"`

	Verbose bool `json:"verbose"`
}

// NewDefaultToolConfig returns a config populated with defaults
func NewDefaultToolConfig() *ToolConfig {
	return &ToolConfig{
		HashType:     hashing.DefaultHashType,
		LeafEncoding: util.LeafEncodingRaw,
		Port:         DefaultPort,
		RateLimit:    DefaultRateLimit,
		RateBurst:    DefaultRateBurst,
		Persistence: PersistenceConfig{
			Type:     PersistenceTypeNone,
			DataPath: DefaultDataPath,
		},
	}
}

// Validate validates the tool configuration
func (c *ToolConfig) Validate() error {
	var allErrors field.ErrorList

	if _, err := hashing.NewHasher(c.HashType); err != nil {
		allErrors = append(allErrors, field.NotSupported(field.NewPath("hashType"), c.HashType,
			[]string{string(hashing.HashTypeKeccak256), string(hashing.HashTypeSha256), string(hashing.HashTypeBlake2b)}))
	}

	if _, err := util.ParseLeafEncoding(string(c.LeafEncoding)); err != nil {
		allErrors = append(allErrors, field.NotSupported(field.NewPath("leafEncoding"), c.LeafEncoding,
			[]string{string(util.LeafEncodingRaw), string(util.LeafEncodingHex), string(util.LeafEncodingABI)}))
	}

	if c.Port < 1 || c.Port > 65535 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("port"), c.Port, "must be between 1-65535"))
	}
	if c.RateLimit < 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("rateLimit"), c.RateLimit, "cannot be negative"))
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("rateBurst"), c.RateBurst, "must be at least 1 when rate limiting is enabled"))
	}

	allErrors = append(allErrors, c.Persistence.validate(field.NewPath("persistence"))...)

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}
