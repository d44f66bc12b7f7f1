package contracts

// Reporter receives human-oriented progress and result tables from the pipeline
type Reporter interface {
	Progress(stage Stage, msg string)
	Table(stage Stage, t *Table)
}

// NopReporter discards everything
type NopReporter struct{}

func (NopReporter) Progress(Stage, string) {}
func (NopReporter) Table(Stage, *Table)    {}
