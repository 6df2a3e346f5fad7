package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/interview-tracker/config"
	"github.com/oksasatya/interview-tracker/internal/application"
	"github.com/oksasatya/interview-tracker/internal/domain/entity"
	pginfra "github.com/oksasatya/interview-tracker/internal/infrastructure/postgres"
	"github.com/oksasatya/interview-tracker/pkg/helpers"
)

const (
	demoName     = "Demo Interviewer"
	demoEmail    = "demo@interview-tracker.local"
	demoPassword = "password123"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	creds := application.NewCredentialStore(pginfra.NewInterviewerRepository(pool), helpers.NewBcryptHasher(cfg.BcryptCost))
	interviewers := application.NewInterviewerService(creds, helpers.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL), logger)
	candidates := application.NewCandidateService(pginfra.NewCandidateRepository(pool), logger)

	sess, err := interviewers.Register(ctx, application.RegisterInput{Name: demoName, Email: demoEmail, Password: demoPassword})
	if errors.Is(err, application.ErrEmailTaken) {
		sess, err = interviewers.Login(ctx, demoEmail, demoPassword)
	}
	if err != nil {
		log.Fatalf("failed to seed interviewer: %v", err)
	}
	me := sess.Interviewer
	fmt.Printf("seeded interviewer: id=%s email=%s password=%s\n", me.ID, me.Email, demoPassword)

	existing, _, err := candidates.ListMine(ctx, me.ID)
	if err != nil {
		log.Fatalf("failed to list candidates: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("interviewer already has %d candidates; skipping\n", len(existing))
		return
	}

	day := time.Now().UTC().Truncate(24 * time.Hour)
	score := 8.5
	samples := []application.CandidateInput{
		{FullName: "Ada Lovelace", Email: "ada@example.com", Position: "Backend Engineer", InterviewField: "Go",
			InterviewRound: string(entity.RoundTechnical), InterviewDate: day.Add(24 * time.Hour).Format(time.RFC3339)},
		{FullName: "Grace Hopper", Email: "grace@example.com", Position: "Platform Engineer", InterviewField: "Infrastructure",
			InterviewRound: string(entity.RoundManagerial), InterviewDate: day.Add(48 * time.Hour).Format(time.RFC3339)},
		{FullName: "Alan Turing", Position: "Data Engineer", InterviewField: "Data",
			InterviewRound: string(entity.RoundHR), InterviewDate: day.Add(-72 * time.Hour).Format(time.RFC3339),
			Status: string(entity.StatusSelected), Score: &score, Feedback: "Strong fundamentals"},
	}
	for _, in := range samples {
		view, _, err := candidates.Create(ctx, me.ID, in)
		if err != nil {
			log.Fatalf("failed to seed candidate %s: %v", in.FullName, err)
		}
		fmt.Printf("seeded candidate: id=%s name=%s status=%s\n", view.ID, view.FullName, view.Status)
	}
}
