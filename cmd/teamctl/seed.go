package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"courtside/team-ops/internal/app"
	"courtside/team-ops/internal/cache"
	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/service"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed-roster <file.csv>",
	Short: "Add players from a CSV file (name,number,position)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		players, err := parseRoster(f)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		stores, err := app.OpenStores(cfg.Database)
		if err != nil {
			return err
		}
		defer stores.Close()

		roster := service.NewRosterService(stores.Roster, cache.NewMemoryCache())
		for i := range players {
			created, err := roster.Create(cmd.Context(), &players[i])
			if err != nil {
				return fmt.Errorf("adding %q: %w", players[i].Name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t#%d\t%s\n", created.ID.Hex(), created.Number, created.Name)
		}
		return nil
	},
}

// parseRoster reads name,number,position rows. A header row is skipped.
func parseRoster(r io.Reader) ([]domain.Player, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var players []domain.Player
	for line := 1; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "name") {
			continue
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("line %d: want name,number[,position]", line)
		}
		number, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad number %q", line, rec[1])
		}
		p := domain.Player{Name: strings.TrimSpace(rec[0]), Number: number, Active: true}
		if len(rec) > 2 {
			p.Position = strings.TrimSpace(rec[2])
		}
		players = append(players, p)
	}
	if len(players) == 0 {
		return nil, errors.New("no players in file")
	}
	return players, nil
}
