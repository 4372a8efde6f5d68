package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/ngdocs/internal/model"
)

func TestStatusFor_Boundaries(t *testing.T) {
	cases := []struct {
		percent int
		want    Status
	}{
		{0, StatusLow},
		{25, StatusLow},
		{26, StatusMedium},
		{50, StatusMedium},
		{51, StatusGood},
		{75, StatusGood},
		{76, StatusVeryGood},
		{100, StatusVeryGood},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.percent), "percent %d", tc.percent)
	}
}

func TestCompute_ComponentImplicitUnit(t *testing.T) {
	g := &model.Graph{Components: []model.Component{{
		Declarable: model.Declarable{
			Name: "AppComponent", File: "app.component.ts", Description: "root component",
			Properties: []model.Member{{Name: "title", Description: "the title"}},
			Methods:    []model.Member{{Name: "reset"}},
		},
		Inputs: []model.Member{{Name: "mode", Description: "display mode"}},
	}}}

	report := Compute(g)
	require.Len(t, report.Records, 1)
	rec := report.Records[0]
	// 3 members + 1 implicit description unit; 2 members + description documented.
	assert.Equal(t, 4, rec.Total)
	assert.Equal(t, 3, rec.Documented)
	assert.Equal(t, 75, rec.Percent)
	assert.Equal(t, StatusGood, rec.Status)
}

func TestCompute_FullyDocumentedComponent(t *testing.T) {
	g := &model.Graph{Components: []model.Component{{
		Declarable: model.Declarable{
			Name: "DoneComponent", File: "done.component.ts", Description: "documented",
		},
	}}}

	report := Compute(g)
	require.Len(t, report.Records, 1)
	assert.Equal(t, 100, report.Records[0].Percent)
	assert.Equal(t, StatusVeryGood, report.Records[0].Status)
	assert.Equal(t, 100, report.Percent)
	assert.Equal(t, StatusVeryGood, report.Status)
}

func TestCompute_MemberlessEntitiesSkipped(t *testing.T) {
	g := &model.Graph{
		Classes:    []model.Class{{Declarable: model.Declarable{Name: "Marker", File: "marker.ts"}}},
		Interfaces: []model.Interface{{Declarable: model.Declarable{Name: "Tag", File: "tag.ts"}}},
		Injectables: []model.Injectable{{Declarable: model.Declarable{
			Name: "Svc", File: "svc.ts",
			Methods: []model.Member{{Name: "run"}},
		}}},
	}

	report := Compute(g)
	require.Len(t, report.Records, 1, "entities without documentable members are skipped, not scored zero")
	assert.Equal(t, "Svc", report.Records[0].Name)
	assert.Equal(t, 0, report.Records[0].Percent, "zero documented of one total")
}

func TestCompute_PipesNeverSkipped(t *testing.T) {
	g := &model.Graph{Pipes: []model.Pipe{
		{Declarable: model.Declarable{Name: "BarePipe", File: "bare.pipe.ts"}},
		{Declarable: model.Declarable{Name: "DocPipe", File: "doc.pipe.ts", Description: "formats"}},
	}}

	report := Compute(g)
	require.Len(t, report.Records, 2)
	assert.Equal(t, 0, report.Records[0].Percent)
	assert.Equal(t, 100, report.Records[1].Percent)
	assert.Equal(t, 50, report.Percent, "aggregate is the floored mean")
	assert.Equal(t, StatusMedium, report.Status)
}

func TestCompute_SortedByFilePath(t *testing.T) {
	g := &model.Graph{Pipes: []model.Pipe{
		{Declarable: model.Declarable{Name: "Z", File: "z.pipe.ts"}},
		{Declarable: model.Declarable{Name: "A", File: "a.pipe.ts"}},
	}}

	report := Compute(g)
	require.Len(t, report.Records, 2)
	assert.Equal(t, "a.pipe.ts", report.Records[0].FilePath)
	assert.Equal(t, "z.pipe.ts", report.Records[1].FilePath)
}

func TestCompute_EmptyGraph(t *testing.T) {
	report := Compute(&model.Graph{})
	assert.Zero(t, report.Count)
	assert.Zero(t, report.Percent, "no records must not divide by zero")
	assert.Equal(t, StatusLow, report.Status)
}
