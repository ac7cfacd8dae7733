package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureUserIndexes: creating email_unique index")
	_, err := db.Collection("users").Indexes().CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureUserIndexes: email index error:", err)
		return err
	}
	return nil
}

func EnsureRiderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().
				SetName("userId_unique").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "location.coordinates", Value: "2dsphere"}},
			Options: options.Index().SetName("location_2dsphere"),
		},
	}

	log.Println("EnsureRiderIndexes: creating userId_unique and location_2dsphere indexes")
	_, err := db.Collection("riders").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Println("EnsureRiderIndexes: index error:", err)
		return err
	}
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("userId_index"),
		},
		{
			Keys:    bson.D{{Key: "assignedRider", Value: 1}},
			Options: options.Index().SetName("assignedRider_index"),
		},
		{
			Keys:    bson.D{{Key: "riderLocation.coordinates", Value: "2dsphere"}},
			Options: options.Index().SetName("riderLocation_2dsphere"),
		},
	}

	log.Println("EnsureOrderIndexes: creating order indexes")
	_, err := db.Collection("orders").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Println("EnsureOrderIndexes: index error:", err)
		return err
	}
	return nil
}

func EnsureServiceIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	nameIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
		Options: options.Index().
			SetName("name_unique").
			SetUnique(true),
	}

	log.Println("EnsureServiceIndexes: creating name_unique index")
	_, err := db.Collection("services").Indexes().CreateOne(ctx, nameIndex)
	if err != nil {
		log.Println("EnsureServiceIndexes: name index error:", err)
		return err
	}
	return nil
}

func EnsureNotificationIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	inboxIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "isRead", Value: 1},
			{Key: "createdAt", Value: -1},
		},
		Options: options.Index().SetName("inbox_index"),
	}

	log.Println("EnsureNotificationIndexes: creating inbox_index")
	_, err := db.Collection("notifications").Indexes().CreateOne(ctx, inboxIndex)
	if err != nil {
		log.Println("EnsureNotificationIndexes: inbox index error:", err)
		return err
	}
	return nil
}
