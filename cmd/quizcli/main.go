// Command quizcli runs a character quiz in the terminal, or imports a profile
// into the database with -import.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/character-quiz/backend/internal/config"
	"github.com/character-quiz/backend/internal/database"
	"github.com/character-quiz/backend/internal/models"
	"github.com/character-quiz/backend/internal/profiles"
	"github.com/character-quiz/backend/internal/quiz"
	"github.com/character-quiz/backend/internal/rewards"
)

func main() {
	profilePath := flag.String("profile", "", "path to a character profile JSON file")
	wallet := flag.String("wallet", "", "wallet address for the reward (0x + 40 hex digits)")
	count := flag.Int("count", quiz.DefaultQuestionCount, "number of questions to ask")
	seed := flag.Int64("seed", 0, "random seed (0 picks one from the clock)")
	importProfile := flag.Bool("import", false, "store the profile in the database instead of running a quiz")
	flag.Parse()

	if *profilePath == "" {
		fmt.Fprintln(os.Stderr, "usage: quizcli -profile character.json [-wallet 0x...] [-count 5] [-seed 42] [-import]")
		os.Exit(2)
	}

	profile, err := profiles.LoadFile(*profilePath)
	if err != nil {
		log.Fatalf("Failed to load profile: %v", err)
	}

	cfg := config.FromEnv()
	if *importProfile {
		if err := importToDatabase(cfg, profile); err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		fmt.Printf("Imported %s.\n", profile.Name)
		return
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	var issuer quiz.RewardIssuer = rewards.NewSimulatedIssuer()
	if cfg.RewardIssuerURL != "" {
		issuer = rewards.NewHTTPIssuer(cfg.RewardIssuerURL, cfg.RewardIssuerKey)
	}

	session := quiz.NewSession(*profile,
		quiz.WithRand(rand.New(rand.NewSource(*seed))),
		quiz.WithQuestionCount(*count),
		quiz.WithRewardIssuer(issuer),
		quiz.WithRewardTimeout(cfg.RewardTimeout),
		quiz.WithRewardThreshold(cfg.RewardThreshold),
		quiz.WithGeneratorConfig(quiz.GeneratorConfig{
			IncludeTopics: cfg.IncludeTopics,
			IncludeLore:   cfg.IncludeLore,
		}),
	)

	if *wallet != "" && !session.SetWalletAddress(*wallet) {
		log.Fatalf("Invalid wallet address %q: want 0x followed by 40 hex digits", *wallet)
	}

	fmt.Println(session.Start())
	question, ok := session.NextQuestion()
	if !ok {
		return
	}
	fmt.Println()
	fmt.Println(question)

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	for session.IsActive() {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			continue
		}
		fmt.Println()
		fmt.Println(session.SubmitAnswer(ctx, answer))
		fmt.Println()
	}
}

func importToDatabase(cfg config.Config, profile *models.CharacterProfile) error {
	db, err := database.Connect(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	return profiles.NewStore(db).Upsert(context.Background(), *profile)
}
