// config/config.go
package config

import (
	"log"
	"os"
	"time"
)

var (
	Port          string
	MongoURI      string
	MongoDatabase string
	JWTKey        []byte
	JWTExpiration time.Duration

	// Handbook scraper settings
	HandbookBaseURL string
	ScrapeTimeout   time.Duration

	// Mail settings
	MailBackend    string // "console" or "sendgrid"
	MailFrom       string
	SendgridAPIKey string
)

func LoadConfig() {
	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "8080"
	}

	MongoURI = os.Getenv("MONGO_URI")
	if MongoURI == "" {
		MongoURI = "mongodb://localhost:27017"
	}

	MongoDatabase = os.Getenv("MONGO_DB")
	if MongoDatabase == "" {
		MongoDatabase = "rpl"
	}

	JWTKey = []byte(os.Getenv("JWT_SECRET"))
	if len(JWTKey) == 0 {
		JWTKey = []byte("secret")
	}

	expireStr := os.Getenv("JWT_EXPIRE")
	dur := 24 * time.Hour
	if expireStr != "" {
		if expireStr == "30d" {
			// long-lived "remember me" sessions
			dur = 30 * 24 * time.Hour
		} else {
			var err error
			dur, err = time.ParseDuration(expireStr)
			if err != nil {
				log.Printf("Invalid JWT_EXPIRE: %s, using 24h", expireStr)
				dur = 24 * time.Hour
			}
		}
	}
	JWTExpiration = dur

	HandbookBaseURL = os.Getenv("HANDBOOK_BASE_URL")
	if HandbookBaseURL == "" {
		HandbookBaseURL = "https://handbooks.uwa.edu.au/unitdetails"
	}

	ScrapeTimeout = 10 * time.Second
	if timeoutStr := os.Getenv("SCRAPE_TIMEOUT"); timeoutStr != "" {
		if d, err := time.ParseDuration(timeoutStr); err == nil && d > 0 {
			ScrapeTimeout = d
		} else {
			log.Printf("Invalid SCRAPE_TIMEOUT: %s, using 10s", timeoutStr)
		}
	}

	MailBackend = os.Getenv("MAIL_BACKEND")
	if MailBackend == "" {
		MailBackend = "console"
	}

	MailFrom = os.Getenv("MAIL_FROM")
	if MailFrom == "" {
		MailFrom = "rpl@uwa.edu.au"
	}

	SendgridAPIKey = os.Getenv("SENDGRID_API_KEY")
}
