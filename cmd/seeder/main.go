package main

import (
	"math/rand"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/racketclub/courtside/internal/club"
	"github.com/racketclub/courtside/internal/database"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	required := []string{"DB_NAME"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}
	config["MIGRATIONS_DIR"] = "./migrations"
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], os.Getenv("TURSO_PRIMARY_URL"), os.Getenv("TURSO_AUTH_TOKEN"), cfg["MIGRATIONS_DIR"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	store := club.New(db)

	seedPlayers := []struct {
		name   string
		rating int
	}{
		{"Seeder Player A", 4},
		{"Seeder Player B", 5},
		{"Seeder Player C", 6},
		{"Seeder Player D", 5},
		{"Seeder Player E", 7},
		{"Seeder Player F", 3},
	}

	var ids []int64
	for _, sp := range seedPlayers {
		p, err := store.CreatePlayer(sp.name, sp.rating, nil)
		if err != nil {
			log.Fatalf("Failed to insert seed player %s: %s", sp.name, err)
		}
		ids = append(ids, p.ID)
	}
	log.Info("Seed players created.", "count", len(ids))

	const numMatches = 50
	for i := 0; i < numMatches; i++ {
		perm := rand.Perm(len(ids))[:4]
		scoreA, scoreB := 21, rand.Intn(20)
		if rand.Intn(2) == 0 {
			scoreA, scoreB = scoreB, scoreA
		}
		winner := club.TeamA
		if scoreB > scoreA {
			winner = club.TeamB
		}
		m := &club.Match{
			TeamAPlayer1: ids[perm[0]],
			TeamAPlayer2: ids[perm[1]],
			TeamBPlayer1: ids[perm[2]],
			TeamBPlayer2: ids[perm[3]],
			TeamAScore:   scoreA,
			TeamBScore:   scoreB,
			WinningTeam:  winner,
			PlayedAt:     int64(1700000000 + i*3600),
		}
		if err := store.CreateMatch(m); err != nil {
			log.Fatalf("Failed to insert seed match: %s", err)
		}
	}
	log.Info("Seed matches created.", "count", numMatches)
}
