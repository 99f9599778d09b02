// handlers/collections.go
package handlers

import (
	"log"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"

	"github.com/websense/RPL/database"
	"github.com/websense/RPL/mail"
	"github.com/websense/RPL/scraper"
)

var (
	applicationCollection  *mongo.Collection
	incomingUnitCollection *mongo.Collection
	commentCollection      *mongo.Collection
	revisionCollection     *mongo.Collection
	accountCollection      *mongo.Collection
	fileBucket             *gridfs.Bucket

	unitFetcher *scraper.Fetcher
	notifier    *mail.Notifier
)

func InitCollections() {
	db := database.DB()
	applicationCollection = db.Collection("applications")
	incomingUnitCollection = db.Collection("incoming_units")
	commentCollection = db.Collection("comments")
	revisionCollection = db.Collection("revisions")
	accountCollection = db.Collection("accounts")

	bucket, err := gridfs.NewBucket(db)
	if err != nil {
		log.Fatalf("Failed to open GridFS bucket: %v", err)
	}
	fileBucket = bucket
}

// InitServices wires the handbook fetcher and the mail notifier. Called once
// from main after config load.
func InitServices(f *scraper.Fetcher, n *mail.Notifier) {
	unitFetcher = f
	notifier = n
}
