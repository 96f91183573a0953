package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/secmon-lab/augur/pkg/domain/model"
	"github.com/secmon-lab/augur/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	labelColor   = color.New(color.FgYellow)
	dimColor     = color.New(color.Faint)
)

func writer(c *cli.Command) io.Writer {
	if root := c.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

func heading(ctx context.Context, w io.Writer, title string) {
	safe.Write(ctx, w, []byte(headingColor.Sprint(title)+"\n"))
}

func line(ctx context.Context, w io.Writer, format string, args ...any) {
	safe.Write(ctx, w, []byte(fmt.Sprintf(format, args...)+"\n"))
}

func field(ctx context.Context, w io.Writer, label, value string) {
	line(ctx, w, "%s %s", labelColor.Sprint(label+":"), value)
}

func printRecords(ctx context.Context, w io.Writer, records []*model.EpisodicRecord) {
	if len(records) == 0 {
		line(ctx, w, "%s", dimColor.Sprint("no records"))
		return
	}
	for i, r := range records {
		heading(ctx, w, fmt.Sprintf("#%d %s", i+1, r.ID))
		field(ctx, w, "task", r.Task)
		field(ctx, w, "result", r.Result)
		field(ctx, w, "tags", joinTags(r.Tags))
		field(ctx, w, "importance", fmt.Sprint(r.Importance))
		field(ctx, w, "accessed", fmt.Sprintf("%d times, last %s", r.AccessCount, r.LastAccess.Format("2006-01-02 15:04:05")))
		line(ctx, w, "%s", r.Code)
	}
}

func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

