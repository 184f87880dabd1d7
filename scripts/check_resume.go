package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"alfredoptarigan/resume-studio/internal/apperror"
	"alfredoptarigan/resume-studio/internal/config"
	"alfredoptarigan/resume-studio/internal/models"
	"alfredoptarigan/resume-studio/internal/services"
)

// check_resume sends a local resume to both services and prints what the
// pages would show.
//
//	go run ./scripts/check_resume.go -file resume.pdf -out ./out
func main() {
	filePath := flag.String("file", "", "resume to upload")
	outDir := flag.String("out", ".", "directory for the enhanced PDF")
	flag.Parse()

	if *filePath == "" {
		log.Fatal("❌ -file is required")
	}

	log.Println("🚀 Starting resume check...")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	content, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("❌ Failed to read %s: %v", *filePath, err)
	}
	file := services.ResumeFile{Filename: filepath.Base(*filePath), Content: content}

	ctx := context.Background()
	failed := false

	log.Printf("📊 Scoring with %s\n", cfg.Services.MatchURL)
	match, err := services.NewMatchClient(cfg.Services.MatchURL, cfg.Services.Timeout).Match(ctx, file)
	if err != nil {
		failed = true
		log.Printf("❌ Match failed (%s): %v\n", apperror.KindOf(err), err)
	} else {
		log.Printf("✅ Match Score: %d%% (%s)\n", match.Score, models.TierForScore(match.Score))
		log.Printf("   Matched Keywords: %s\n", strings.Join(match.MatchedKeywords, ", "))
		log.Printf("   Missing Keywords: %s\n", strings.Join(match.MissingKeywords, ", "))
	}

	log.Printf("✨ Enhancing with %s\n", cfg.Services.EnhanceURL)
	outcome, err := services.NewEnhanceClient(cfg.Services.EnhanceURL, cfg.Services.Timeout).Enhance(ctx, file)
	if err != nil {
		failed = true
		log.Printf("❌ Enhance failed (%s): %v\n", apperror.KindOf(err), err)
	} else {
		log.Printf("✅ %d AI Suggestions:\n", len(outcome.Suggestions))
		for i, suggestion := range outcome.Suggestions {
			log.Printf("   %d. %s\n", i+1, suggestion)
		}

		switch {
		case outcome.DocumentErr != nil:
			failed = true
			log.Printf("❌ Enhanced document: %v\n", outcome.DocumentErr)
		case outcome.Document == nil:
			log.Println("ℹ️  No enhanced document returned")
		default:
			if pages, err := services.NewPDFInspector().PageCount(outcome.Document); err != nil {
				log.Printf("⚠️  Enhanced document could not be inspected: %v\n", err)
			} else {
				log.Printf("📄 Enhanced document has %d page(s)\n", pages)
			}

			target := filepath.Join(*outDir, models.EnhancedFilename)
			if err := os.MkdirAll(*outDir, 0755); err != nil {
				log.Fatalf("❌ Failed to create %s: %v", *outDir, err)
			}
			if err := os.WriteFile(target, outcome.Document, 0644); err != nil {
				log.Fatalf("❌ Failed to write %s: %v", target, err)
			}
			log.Printf("💾 Saved %s\n", target)
		}
	}

	if failed {
		os.Exit(1)
	}
	log.Println("🎉 Resume check completed!")
}
