package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type FilesConfig struct {
	RootDir  string `yaml:"root_dir"`
	FontPath string `yaml:"font_path"`
}

type AuthConfig struct {
	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
}

// PipelineConfig carries the business-policy knobs of the conversion pipeline.
// approval_policy decides where CRM approval lands a lead:
// "pending_admin" keeps the human contracting step, "direct_won" closes immediately.
type PipelineConfig struct {
	ApprovalPolicy string `yaml:"approval_policy"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Auth  AuthConfig `yaml:"auth"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		AdminEmail   string `yaml:"admin_email"`
	} `yaml:"email"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
	} `yaml:"telegram"`
	Files    FilesConfig    `yaml:"files"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

func LoadConfig() *Config {
	path := os.Getenv("OFERTALIA_CONFIG")
	if path == "" {
		path = "config/config.yaml"
	}
	f, err := os.Open(path)
	if err != nil {
		panic("Failed to open " + path + ": " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse " + path + ": " + err.Error())
	}

	if cfg.Files.RootDir == "" {
		cfg.Files.RootDir = "./files"
	}
	if cfg.Auth.TokenTTLMinutes <= 0 {
		cfg.Auth.TokenTTLMinutes = 60
	}
	if cfg.Pipeline.ApprovalPolicy == "" {
		cfg.Pipeline.ApprovalPolicy = "pending_admin"
	}
	return &cfg
}
