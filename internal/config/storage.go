package config

// StorageConfig points at the S3-compatible bucket (Cloudflare R2, MinIO or
// AWS S3) that holds property photos.
type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
	// PublicBaseURL is prepended to object keys when returning photo URLs
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// Enabled reports whether photo storage has been configured
func (s StorageConfig) Enabled() bool {
	return s.Bucket != ""
}
