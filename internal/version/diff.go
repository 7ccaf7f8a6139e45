package version

import (
	"bytes"
	"encoding/json"
)

// CompareVersions structurally diffs two snapshots of the same dashboard.
// Widgets are matched by id; layout and settings are compared whole, emitting
// at most one modified entry each. The summary is derived from the change
// list so the two can never disagree.
func (vs *VersionService) CompareVersions(dashboardID, fromVersionID, toVersionID string) (*VersionComparison, error) {
	from, err := vs.GetVersion(dashboardID, fromVersionID)
	if err != nil {
		return nil, err
	}
	to, err := vs.GetVersion(dashboardID, toVersionID)
	if err != nil {
		return nil, err
	}

	fromWidgets, err := decodeWidgets(from.Widgets)
	if err != nil {
		return nil, err
	}
	toWidgets, err := decodeWidgets(to.Widgets)
	if err != nil {
		return nil, err
	}

	changes := []VersionChange{}

	for _, w := range toWidgets {
		if findWidget(fromWidgets, w.ID) == nil {
			changes = append(changes, VersionChange{
				Type:        ChangeAdded,
				Component:   ComponentWidget,
				Path:        "widgets." + w.ID,
				NewValue:    w,
				Description: "Added widget: " + w.Title,
			})
		}
	}

	for _, w := range fromWidgets {
		if findWidget(toWidgets, w.ID) == nil {
			changes = append(changes, VersionChange{
				Type:        ChangeRemoved,
				Component:   ComponentWidget,
				Path:        "widgets." + w.ID,
				OldValue:    w,
				Description: "Removed widget: " + w.Title,
			})
		}
	}

	for _, fw := range fromWidgets {
		tw := findWidget(toWidgets, fw.ID)
		if tw != nil && !jsonEqual(fw, *tw) {
			changes = append(changes, VersionChange{
				Type:        ChangeModified,
				Component:   ComponentWidget,
				Path:        "widgets." + fw.ID,
				OldValue:    fw,
				NewValue:    *tw,
				Description: "Modified widget: " + fw.Title,
			})
		}
	}

	fromLayout, err := decodeLayout(from.Layout)
	if err != nil {
		return nil, err
	}
	toLayout, err := decodeLayout(to.Layout)
	if err != nil {
		return nil, err
	}
	if !jsonEqual(fromLayout, toLayout) {
		changes = append(changes, VersionChange{
			Type:        ChangeModified,
			Component:   ComponentLayout,
			Path:        "layout",
			OldValue:    fromLayout,
			NewValue:    toLayout,
			Description: "Layout configuration changed",
		})
	}

	fromSettings, err := decodeSettings(from.Settings)
	if err != nil {
		return nil, err
	}
	toSettings, err := decodeSettings(to.Settings)
	if err != nil {
		return nil, err
	}
	if !jsonEqual(fromSettings, toSettings) {
		changes = append(changes, VersionChange{
			Type:        ChangeModified,
			Component:   ComponentSettings,
			Path:        "settings",
			OldValue:    fromSettings,
			NewValue:    toSettings,
			Description: "Dashboard settings changed",
		})
	}

	summary := ComparisonSummary{}
	for _, c := range changes {
		switch {
		case c.Component == ComponentWidget && c.Type == ChangeAdded:
			summary.WidgetsAdded++
		case c.Component == ComponentWidget && c.Type == ChangeRemoved:
			summary.WidgetsRemoved++
		case c.Component == ComponentWidget && c.Type == ChangeModified:
			summary.WidgetsModified++
		case c.Component == ComponentLayout:
			summary.LayoutChanges++
		case c.Component == ComponentSettings:
			summary.SettingChanges++
		}
	}

	return &VersionComparison{
		DashboardID: dashboardID,
		FromVersion: fromVersionID,
		ToVersion:   toVersionID,
		Changes:     changes,
		Summary:     summary,
	}, nil
}

func findWidget(widgets []Widget, id string) *Widget {
	for i := range widgets {
		if widgets[i].ID == id {
			return &widgets[i]
		}
	}
	return nil
}

// jsonEqual is deep structural equality via canonical JSON; map keys are
// sorted by encoding/json, so the comparison is order-insensitive for
// settings and widget config.
func jsonEqual(a, b any) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

func decodeWidgets(raw []byte) ([]Widget, error) {
	widgets := []Widget{}
	if len(raw) == 0 {
		return widgets, nil
	}
	if err := json.Unmarshal(raw, &widgets); err != nil {
		return nil, err
	}
	return widgets, nil
}

func decodeLayout(raw []byte) ([]LayoutItem, error) {
	layout := []LayoutItem{}
	if len(raw) == 0 {
		return layout, nil
	}
	if err := json.Unmarshal(raw, &layout); err != nil {
		return nil, err
	}
	return layout, nil
}

func decodeSettings(raw []byte) (map[string]any, error) {
	settings := map[string]any{}
	if len(raw) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}
