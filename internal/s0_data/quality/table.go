package quality

import (
	"sort"

	"github.com/wonny/pdcal/internal/contracts"
)

// ToTable renders the snapshot as the data_quality table, one row per variable
func ToTable(snapshot *contracts.DataQualitySnapshot) (*contracts.Table, error) {
	t := contracts.NewTable(contracts.TableDataQuality,
		contracts.DateCol("AsOf"),
		contracts.TextCol("Variable"),
		contracts.FloatCol("Coverage"),
		contracts.IntCol("Observations"),
		contracts.BoolCol("Passed"),
	)

	names := make([]string, 0, len(snapshot.Coverage))
	for name := range snapshot.Coverage {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := t.Append(snapshot.AsOf, name, snapshot.Coverage[name], snapshot.Observations, snapshot.Passed); err != nil {
			return nil, err
		}
	}
	return t, nil
}
