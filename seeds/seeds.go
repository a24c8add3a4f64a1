package seeds

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type listingTemplate struct {
	title  string
	sector string
	skills []string
}

var templates = []listingTemplate{
	{"Data Analyst Intern (B.Tech)", "IT", []string{"Python", "SQL", "Excel"}},
	{"Backend Developer Intern", "IT", []string{"Go", "SQL", "Docker"}},
	{"Frontend Developer Intern", "IT", []string{"JavaScript", "React", "CSS"}},
	{"Machine Learning Intern (M.Tech)", "IT", []string{"Python", "TensorFlow", "Statistics"}},
	{"Cloud Operations Intern", "IT", []string{"AWS", "Linux", "Networking"}},
	{"Financial Analyst Intern (MBA)", "Finance", []string{"Excel", "Accounting", "Financial Modeling"}},
	{"Audit Intern (B.Com)", "Finance", []string{"Accounting", "Tally", "Excel"}},
	{"Digital Marketing Intern", "Marketing", []string{"SEO", "Content Writing", "Social Media"}},
	{"Brand Strategy Intern (BBA)", "Marketing", []string{"Market Research", "Communication", "Excel"}},
	{"Mechanical Design Intern (B.E.)", "Manufacturing", []string{"AutoCAD", "SolidWorks", "Quality Control"}},
	{"Supply Chain Intern", "Logistics", []string{"Excel", "Inventory Management", "SAP"}},
	{"Public Health Research Intern", "Healthcare", []string{"Research", "Statistics", "Communication"}},
	{"Clinical Data Intern (B.Pharm)", "Healthcare", []string{"Data Entry", "Excel", "Pharmacology"}},
	{"Rural Development Intern", "Government", []string{"Field Survey", "Communication", "Report Writing"}},
	{"Policy Research Intern (MA)", "Government", []string{"Research", "Report Writing", "Economics"}},
	{"UI/UX Design Intern", "Media", []string{"Figma", "Prototyping", "User Research"}},
	{"Video Production Intern", "Media", []string{"Premiere Pro", "Storytelling", "Photography"}},
	{"Renewable Energy Intern (B.Tech)", "Energy", []string{"Solar Design", "AutoCAD", "Excel"}},
	{"Teaching Assistant Intern (B.Ed)", "Education", []string{"Communication", "Lesson Planning", "English"}},
	{"Cybersecurity Intern", "IT", []string{"Networking", "Linux", "Python"}},
}

var locations = []string{"Remote", "Bengaluru", "Mumbai", "Delhi", "Hyderabad", "Pune", "Chennai", "Kolkata"}

// Setup inserts a deterministic set of internship listings.
func Setup(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error {
	rng := rand.New(rand.NewSource(42))

	// Truncate existing data before insert
	log = log.Named("seed")
	log.Info("truncating existing listings")
	if _, err := pool.Exec(ctx, `TRUNCATE listings RESTART IDENTITY`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	log.Info("inserting listings", zap.Int("count", len(templates)))
	if err := seedListings(ctx, pool, rng); err != nil {
		return fmt.Errorf("seed listings: %w", err)
	}

	log.Info("seeding complete")
	return nil
}

func seedListings(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand) error {
	rows := []string{}
	args := []any{}

	for _, tpl := range templates {
		location := locations[rng.Intn(len(locations))]

		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4))
		args = append(args, tpl.title, tpl.sector, tpl.skills, location)
	}

	if len(rows) == 0 {
		return nil
	}

	query := "INSERT INTO listings (title, sector, skills, location) VALUES " +
		strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}
