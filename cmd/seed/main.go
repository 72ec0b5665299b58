// Command seed resets the catalog and user collections to a known
// development data set.
package main

import (
	"context"
	"log"
	"time"

	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/cart"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/catalog"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/config"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/domain"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/identity"
	"go.mongodb.org/mongo-driver/bson"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := cart.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Client().Disconnect(ctx)

	for _, name := range []string{"products", "users", "carts"} {
		if _, err := db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			log.Fatalf("Failed to clear %s: %v", name, err)
		}
	}

	cat := catalog.NewMongoAccessor(db)
	now := time.Now()
	products := []*domain.Product{
		{ID: "prod-keyboard", Name: "Mechanical Keyboard", Category: "peripherals", Price: 89.90, Stock: 25, CreatedAt: now},
		{ID: "prod-mouse", Name: "Wireless Mouse", Category: "peripherals", Price: 39.50, Stock: 40, CreatedAt: now},
		{ID: "prod-monitor", Name: "27\" Monitor", Category: "displays", Price: 249.00, Stock: 12, CreatedAt: now},
		{ID: "prod-headset", Name: "USB Headset", Category: "audio", Price: 59.00, Stock: 18, CreatedAt: now},
		{ID: "prod-webcam", Name: "HD Webcam", Category: "video", Price: 74.25, Stock: 9, CreatedAt: now},
	}
	for _, p := range products {
		if err := cat.Insert(ctx, p); err != nil {
			log.Fatalf("Failed to insert product %s: %v", p.ID, err)
		}
	}

	users := identity.NewMongoStore(db)
	seedUsers := []*domain.User{
		{ID: "user-admin", FirstName: "Ada", LastName: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin},
		{ID: "user-buyer", FirstName: "Bruno", LastName: "Buyer", Email: "buyer@example.com", Role: domain.RoleUser},
	}
	for _, u := range seedUsers {
		if err := users.Insert(ctx, u); err != nil {
			log.Fatalf("Failed to insert user %s: %v", u.ID, err)
		}
	}

	log.Printf("Seeded %d products and %d users", len(products), len(seedUsers))
}
