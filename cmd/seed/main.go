package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/lostudea/lostudea-api/config"
	"github.com/lostudea/lostudea-api/internal/domain/entity"
	"github.com/lostudea/lostudea-api/pkg/helpers"
)

// Seeds a staff account plus a demo seeker, finder, and a pair of reports
// so the matching flow can be exercised right after a fresh migration.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	adminID := seedUser(db, "objetosperdidos@udea.edu.co", "admin1234", "Oficina de Objetos Perdidos", entity.RoleSeeker, "+573000000000", "0000000000", true)
	seekerID := seedUser(db, "laura.gomez@udea.edu.co", "password123", "Laura Gómez", entity.RoleSeeker, "+573001112233", "1036945210", false)
	finderID := seedUser(db, "andres.rios@udea.edu.co", "password123", "Andrés Ríos", entity.RoleFinder, "", "", false)

	fmt.Printf("seeded users: admin=%s seeker=%s finder=%s\n", adminID, seekerID, finderID)

	var lostID string
	err = db.QueryRow(`
		INSERT INTO lost_items (type, locations, lost_date, description, image_url, status, seeker_id)
		VALUES ($1, $2, $3, $4, '', $5, $6)
		RETURNING id
	`, "celular", "{\"Bloque 18 - Fac. de Ingeniería (laboratorios)\",\"Bloque 19 - Fac. de Ingeniería\"}",
		time.Now().AddDate(0, 0, -2), "Celular negro con forro azul, pantalla rota en la esquina",
		string(entity.LostStatusSearching), seekerID).Scan(&lostID)
	if err != nil {
		log.Fatalf("failed to seed lost report: %v", err)
	}

	var foundID string
	err = db.QueryRow(`
		INSERT INTO found_items (type, location, found_date, image, status, finder_id)
		VALUES ($1, $2, $3, '', $4, $5)
		RETURNING id
	`, "celular", string(entity.LocationBloque19), time.Now().AddDate(0, 0, -1),
		string(entity.FoundStatusPending), finderID).Scan(&foundID)
	if err != nil {
		log.Fatalf("failed to seed found report: %v", err)
	}

	fmt.Printf("seeded reports: lost=%s found=%s\n", lostID, foundID)
}

func seedUser(db *sql.DB, email, password, fullName string, role entity.Role, phone, idNumber string, isAdmin bool) string {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, full_name, role, phone_number, id_number, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO UPDATE SET full_name = EXCLUDED.full_name
		RETURNING id
	`, email, hash, fullName, string(role), phone, idNumber, isAdmin).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user %s: %v", email, err)
	}
	return id
}
