package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/ytassist/internal/formatter"
	"github.com/desertthunder/ytassist/internal/models"
)

var (
	_ list.Item = songItem{}
	_ list.Item = runItem{}
)

// songItem wraps [models.SongResult] to implement [list.Item].
type songItem struct {
	result models.SongResult
}

func (i songItem) FilterValue() string { return i.result.Song.Title }
func (i songItem) Title() string {
	if _, ok := i.result.Result.(models.Added); ok {
		return fmt.Sprintf("%s by %s", i.result.Song.Title, i.result.Song.Artist)
	}
	return formatter.FailureLabel(i.result)
}
func (i songItem) Description() string {
	if added, ok := i.result.Result.(models.Added); ok {
		return fmt.Sprintf("added • %s", added.MediaID)
	}
	return models.Kind(i.result.Result)
}

// runItem wraps [models.RunRecord] to implement [list.Item].
type runItem struct {
	run models.RunRecord
}

func (i runItem) FilterValue() string { return i.run.Prompt }
func (i runItem) Title() string {
	if i.run.PlaylistName != "" {
		return i.run.PlaylistName
	}
	return i.run.Prompt
}
func (i runItem) Description() string {
	desc := fmt.Sprintf("%s • %s", i.run.CreatedAt.Local().Format("2006-01-02 15:04"), i.run.Stage)
	if i.run.Requested > 0 {
		desc = fmt.Sprintf("%s • %d/%d songs", desc, i.run.Added, i.run.Requested)
	}
	return desc
}

func songItems(results []models.SongResult) []list.Item {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = songItem{result: r}
	}
	return items
}

func runItems(runs []models.RunRecord) []list.Item {
	items := make([]list.Item, len(runs))
	for i, r := range runs {
		items[i] = runItem{run: r}
	}
	return items
}
