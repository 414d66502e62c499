package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/hostelgrub/api/internal/auth"
	"github.com/hostelgrub/api/internal/config"
	"github.com/hostelgrub/api/internal/enum"
	"github.com/hostelgrub/api/internal/menu"
	"github.com/hostelgrub/api/internal/store"
)

func main() {
	cfg := config.Load()

	// CLI flags
	pin := flag.String("pin", "", "New admin PIN (defaults to ADMIN_PIN)")
	dataPath := flag.String("data", cfg.DataPath, "JSON document path (ignored when DATABASE_URL is set)")
	menuFile := flag.String("menu", cfg.MenuFile, "YAML menu used when the document is created")
	useBcrypt := flag.Bool("bcrypt", false, "Store the PIN as a bcrypt hash instead of SHA-256")
	flag.Parse()

	if *pin == "" {
		*pin = os.Getenv("SEED_PIN")
	}
	if *pin == "" {
		*pin = cfg.AdminPIN
		log.Printf("WARNING: Using PIN from ADMIN_PIN (default '1234'). Change it in production!")
	}

	ctx := context.Background()
	backend, closeBackend, err := store.Open(ctx, cfg.DatabaseURL, *dataPath)
	if err != nil {
		log.Fatalf("Unable to open document store: %v", err)
	}
	defer closeBackend()

	items, err := menu.Resolve(*menuFile)
	if err != nil {
		log.Fatalf("Failed to load menu: %v", err)
	}

	pinHash := auth.HashPIN(*pin)
	if *useBcrypt {
		if pinHash, err = auth.HashPINBcrypt(*pin); err != nil {
			log.Fatalf("Failed to hash PIN: %v", err)
		}
	}

	st := store.New(backend)
	seed := store.NewDocument(items, store.AdminAccount{ID: store.DefaultAdminID, PinHash: pinHash}, cfg.StartOrderID)
	if err := st.Init(ctx, seed); err != nil {
		log.Fatalf("Failed to bootstrap document: %v", err)
	}

	var menuCount int
	err = st.Update(ctx, func(doc *store.Document) error {
		resetAdmin(doc, pinHash)
		menuCount = len(doc.Menu)
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to reset admin PIN: %v", err)
	}

	log.Println("=== Seed Complete ===")
	log.Printf("Admin ID:   %s", store.DefaultAdminID)
	log.Printf("Menu items: %d", menuCount)
	if *useBcrypt {
		log.Println("PIN hash:   bcrypt")
	} else {
		log.Println("PIN hash:   sha256")
	}
}

// resetAdmin sets the admin PIN hash and drops admin sessions opened under the
// old PIN. Student sessions are kept.
func resetAdmin(doc *store.Document, pinHash string) {
	admin := doc.Admin()
	if admin == nil {
		doc.Admins = []store.AdminAccount{{ID: store.DefaultAdminID, PinHash: pinHash}}
		admin = &doc.Admins[0]
	}
	admin.PinHash = pinHash

	kept := doc.Sessions[:0]
	for _, s := range doc.Sessions {
		if s.Role == enum.RoleAdmin && s.UserID == admin.ID {
			continue
		}
		kept = append(kept, s)
	}
	doc.Sessions = kept
}
