package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/sayantanroy47/tasky-timeline/pkg/models"
)

// dataFileName is the timeline data file inside the base path.
const dataFileName = "projects.yaml"

// dataFile is the on-disk shape of projects.yaml.
type dataFile struct {
	Version string              `yaml:"version"`
	Data    models.TimelineData `yaml:",inline"`
}

// FileDataSource loads timeline data from a projects.yaml file and pushes
// change notifications via an fsnotify watch, so edits trigger a re-render
// instead of a full state reset.
type FileDataSource struct {
	basePath string
}

// NewFileDataSource creates a data source reading projects.yaml relative
// to basePath.
func NewFileDataSource(basePath string) *FileDataSource {
	return &FileDataSource{basePath: basePath}
}

func (s *FileDataSource) filePath() string {
	return filepath.Join(s.basePath, dataFileName)
}

// Load reads the data file and filters to the requested project IDs. An
// empty projectIDs slice loads everything. A missing file is an empty
// timeline, not an error.
func (s *FileDataSource) Load(ctx context.Context, projectIDs []string) (models.TimelineData, error) {
	if err := ctx.Err(); err != nil {
		return models.TimelineData{}, err
	}

	raw, err := os.ReadFile(s.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return models.TimelineData{}, nil
		}
		return models.TimelineData{}, fmt.Errorf("loading timeline data: %w", err)
	}

	var df dataFile
	if err := yaml.Unmarshal(raw, &df); err != nil {
		return models.TimelineData{}, fmt.Errorf("loading timeline data: parsing YAML: %w", err)
	}

	if len(projectIDs) == 0 {
		return df.Data, nil
	}
	return filterProjects(df.Data, projectIDs), nil
}

// Save writes the full data set back to projects.yaml.
func (s *FileDataSource) Save(data models.TimelineData) error {
	if err := os.MkdirAll(s.basePath, 0o750); err != nil {
		return fmt.Errorf("saving timeline data: creating directory: %w", err)
	}
	raw, err := yaml.Marshal(&dataFile{Version: "1.0", Data: data})
	if err != nil {
		return fmt.Errorf("saving timeline data: marshaling YAML: %w", err)
	}
	if err := os.WriteFile(s.filePath(), raw, 0o600); err != nil {
		return fmt.Errorf("saving timeline data: writing file: %w", err)
	}
	return nil
}

// Subscribe watches the data file and invokes onChange after every write
// or create event. The returned cancel function stops the watch; it is
// safe to call more than once.
func (s *FileDataSource) Subscribe(onChange func()) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("subscribing to timeline data: %w", err)
	}
	// Watch the directory, not the file: editors replace files by rename
	// and a file-level watch would go stale after the first save.
	if err := watcher.Add(s.basePath); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("subscribing to timeline data: %w", err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != dataFileName {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					onChange()
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			_ = watcher.Close()
		})
	}, nil
}

// filterProjects keeps only the named projects, their tasks, milestones
// that require at least one surviving item, and dependencies whose
// endpoints both survive.
func filterProjects(data models.TimelineData, projectIDs []string) models.TimelineData {
	want := make(map[string]bool, len(projectIDs))
	for _, id := range projectIDs {
		want[id] = true
	}

	out := models.TimelineData{}
	kept := make(map[string]bool)
	for _, p := range data.Projects {
		if want[p.ID] {
			out.Projects = append(out.Projects, p)
			kept[p.ID] = true
		}
	}
	for _, t := range data.Tasks {
		if want[t.ProjectID] {
			out.Tasks = append(out.Tasks, t)
			kept[t.ID] = true
		}
	}
	for _, m := range data.Milestones {
		if len(m.RequiredItemIDs) == 0 {
			out.Milestones = append(out.Milestones, m)
			continue
		}
		for _, id := range m.RequiredItemIDs {
			if kept[id] {
				out.Milestones = append(out.Milestones, m)
				break
			}
		}
	}
	for _, d := range data.Dependencies {
		if kept[d.FromID] && kept[d.ToID] {
			out.Dependencies = append(out.Dependencies, d)
		}
	}
	return out
}
