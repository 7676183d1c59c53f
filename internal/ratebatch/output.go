package ratebatch

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/okian/multielo/internal/domain/types"
)

// writeTable prints entries as an aligned rank/player/games/rating table.
func writeTable(w io.Writer, entries []types.RatingEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintln(tw, "rank\tplayer\tgames\trating\t"); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f\t\n", e.Rank, e.PlayerID, e.Games, e.Rating); err != nil {
			return err
		}
	}
	return tw.Flush()
}
