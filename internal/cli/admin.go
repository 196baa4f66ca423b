package cli

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/lifelogapp/lifelog-server/internal/domain"
	domainerrors "github.com/lifelogapp/lifelog-server/internal/errors"
	"github.com/lifelogapp/lifelog-server/internal/service"
)

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database if needed and apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			version, err := e.store.SchemaVersion()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d at %s\n", version, a.dbPath)
			return nil
		},
	}
}

var seedContent = map[domain.LogType][]string{
	domain.LogTypeWakeUp:   {"Up early", "Slept in", "Woke up before the alarm"},
	domain.LogTypeMeal:     {"Oatmeal with berries", "Ramen for lunch", "Pasta night", "Coffee and a croissant"},
	domain.LogTypeActivity: {"5k run", "Yoga", "Long walk by the river", "Climbing session"},
	domain.LogTypeThought:  {"Should call grandma this week", "Idea: tag entries by mood", "Feeling good about the project"},
	domain.LogTypeReading:  {"Two chapters of Dune", "Read an essay on habits"},
	domain.LogTypeMedia:    {"Watched a documentary", "New album on repeat"},
	domain.LogTypeLocation: {"Office", "Home", "Cafe on 5th"},
	domain.LogTypeBookmark: {"Article worth rereading", "Recipe to try"},
}

var seedURLs = []string{
	"https://go.dev/blog",
	"https://example.com/recipes/shakshuka",
	"https://example.org/essays/attention",
}

var seedTags = []string{"health", "work", "family"}

func (a *app) seedCmd() *cobra.Command {
	var (
		days   int
		perDay int
		seed   uint64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with sample entries for the past days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 || perDay < 1 {
				return domainerrors.Validation("--days and --per-day must be positive")
			}

			e, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			tagIDs, err := ensureSeedTags(cmd, e)
			if err != nil {
				return err
			}

			if seed == 0 {
				seed = uint64(a.now().UnixNano())
			}
			rng := rand.New(rand.NewPCG(seed, seed>>1))

			now := a.now().In(e.loc)
			created := 0
			for day := days - 1; day >= 0; day-- {
				for range 1 + rng.IntN(perDay) {
					in := randomEntry(rng, tagIDs)

					// Random time during the day (6am - 11pm)
					at := time.Date(now.Year(), now.Month(), now.Day()-day, 6+rng.IntN(17), rng.IntN(60), 0, 0, e.loc)
					if at.After(now) {
						at = now
					}
					ts := at.UnixMilli()
					in.Timestamp = &ts

					if _, err := e.logs.Create(cmd.Context(), in); err != nil {
						return err
					}
					created++
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %d entries across %d days\n", created, days)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 14, "number of days to fill, ending today")
	cmd.Flags().IntVar(&perDay, "per-day", 5, "maximum entries per day")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (default: time based)")
	return cmd
}

// ensureSeedTags returns the IDs of the sample tags, creating missing ones.
func ensureSeedTags(cmd *cobra.Command, e *env) ([]string, error) {
	existing, err := e.tags.List(cmd.Context())
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(existing))
	for _, t := range existing {
		byName[t.Name] = t.ID
	}

	ids := make([]string, 0, len(seedTags))
	for _, name := range seedTags {
		if tagID, ok := byName[name]; ok {
			ids = append(ids, tagID)
			continue
		}
		t, err := e.tags.Create(cmd.Context(), service.CreateTagInput{Name: name})
		if err != nil {
			return nil, err
		}
		ids = append(ids, t.ID)
	}
	return ids, nil
}

func randomEntry(rng *rand.Rand, tagIDs []string) service.CreateLogInput {
	logType := domain.LogTypes[rng.IntN(len(domain.LogTypes))]
	samples := seedContent[logType]

	in := service.CreateLogInput{
		Type:    string(logType),
		Content: samples[rng.IntN(len(samples))],
	}
	if logType == domain.LogTypeBookmark {
		in.Metadata = domain.Metadata{"url": seedURLs[rng.IntN(len(seedURLs))]}
	}
	// Roughly a third of entries get a tag.
	if rng.IntN(3) == 0 {
		in.TagIDs = []string{tagIDs[rng.IntN(len(tagIDs))]}
	}
	return in
}
