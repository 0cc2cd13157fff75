package filter

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/lmsctl/lms"
)

func TestCompile(t *testing.T) {
	compiler := NewExprCompiler(NodeEnv)

	tests := []struct {
		name       string
		expression string
		valid      bool
		wantErr    error
	}{
		{name: "comparison", expression: `nodeType == "Organization"`, valid: true},
		{name: "helper", expression: `icontains(name, "acme") and nodeId > 0`, valid: true},
		{name: "builtin", expression: `lower(name) startsWith "acme"`, valid: true},
		{name: "empty", expression: "   ", wantErr: ErrEmptyExpression},
		{name: "unclosed string", expression: `name == "acme`},
		{name: "unknown variable", expression: `year > 2020`},
		{name: "not boolean", expression: `nodeId + 1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := compiler.Compile(tt.expression)
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, tt.expression, f.Expression())
				return
			}

			var compErr *CompilationError
			require.ErrorAs(t, err, &compErr)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestNodeFilter(t *testing.T) {
	f, err := NewExprCompiler(NodeEnv).Compile(`nodeType == "OrganizationalUnit" and subType == "Site" and parentId == 1`)
	require.NoError(t, err)

	site := &lms.NodeInfo{Name: "Springfield", NodeID: 4, ParentID: 1, TypeID: lms.NodeTypeOrganizationalUnit, SubTypeID: lms.NodeSubTypeSite}
	region := &lms.NodeInfo{Name: "North", NodeID: 2, ParentID: 1, TypeID: lms.NodeTypeOrganizationalUnit, SubTypeID: lms.NodeSubTypeRegion}

	assert.True(t, f.Match(site))
	assert.False(t, f.Match(region))
	assert.False(t, f.Match(nil))
}

func TestQualificationFilter(t *testing.T) {
	compiler := NewExprCompiler(QualificationEnv)
	q := &lms.QualificationInfo{Name: "Forklift Cert", SKU: "FL-1", RequirementIDs: []int{3, 4, 1}}

	tests := []struct {
		expression string
		want       bool
	}{
		{`requirementCount == 3`, true},
		{`hasRequirement(4) and not hasRequirement(2)`, true},
		{`4 in requirementIds`, true},
		{`iequals(sku, "fl-1")`, true},
		{`name matches "^Crane"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			f, err := compiler.Compile(tt.expression)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Match(q))
		})
	}
}

func TestActivityFilterSunset(t *testing.T) {
	f, err := NewExprCompiler(ActivityEnv).Compile(`sunset`)
	require.NoError(t, err)

	assert.True(t, f.Match(&lms.ActivityInfo{Name: "Safety 101 (Sunset on 3/5/2024)"}))
	assert.False(t, f.Match(&lms.ActivityInfo{Name: "Safety 101"}))
}

func TestEvalReportsRuntimeErrors(t *testing.T) {
	f, err := NewExprCompiler(QualificationEnv).Compile(`requirementIds[5] == 1`)
	require.NoError(t, err)

	q := &lms.QualificationInfo{RequirementIDs: []int{1}}
	_, err = f.Eval(q)
	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, `requirementIds[5] == 1`, evalErr.Expression)
	assert.False(t, f.Match(q))
}

func TestCompilerCache(t *testing.T) {
	compiler := NewExprCompiler(NodeEnv, WithCache(2))

	first, err := compiler.Compile(`nodeId == 1`)
	require.NoError(t, err)
	again, err := compiler.Compile(`  nodeId == 1 `)
	require.NoError(t, err)
	assert.Same(t, first, again)

	_, err = compiler.Compile(`nodeId == 2`)
	require.NoError(t, err)
	_, err = compiler.Compile(`nodeId == 3`)
	require.NoError(t, err)
	assert.Equal(t, 2, compiler.Size())

	evicted, err := compiler.Compile(`nodeId == 1`)
	require.NoError(t, err)
	assert.NotSame(t, first, evicted)

	compiler.Clear()
	assert.Zero(t, compiler.Size())
}

func TestWithHelpers(t *testing.T) {
	compiler := NewExprCompiler(NodeEnv, WithHelpers(map[string]any{
		"isRoot": func(parentID int) bool { return parentID == 0 },
	}))

	f, err := compiler.Compile(`isRoot(parentId)`)
	require.NoError(t, err)
	assert.True(t, f.Match(&lms.NodeInfo{NodeID: 1}))
	assert.False(t, f.Match(&lms.NodeInfo{NodeID: 2, ParentID: 1}))
}

func TestConcurrentEvaluatorKeepsOrder(t *testing.T) {
	f, err := NewExprCompiler(NodeEnv).Compile(`nodeId % 3 == 0`)
	require.NoError(t, err)

	nodes := make([]*lms.NodeInfo, 1000)
	for i := range nodes {
		nodes[i] = &lms.NodeInfo{NodeID: i + 1, Name: fmt.Sprintf("node %d", i+1)}
	}

	evaluator := NewConcurrentEvaluator[*lms.NodeInfo](WithWorkers(4), WithBatchSize(50))
	matches, err := evaluator.Evaluate(context.Background(), f, nodes)
	require.NoError(t, err)

	require.Len(t, matches, 333)
	for i, n := range matches {
		assert.Equal(t, (i+1)*3, n.NodeID)
	}
}

func TestConcurrentEvaluatorCanceled(t *testing.T) {
	f, err := NewExprCompiler(NodeEnv).Compile(`true`)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewConcurrentEvaluator[*lms.NodeInfo]().Evaluate(ctx, f, []*lms.NodeInfo{{NodeID: 1}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPresets(t *testing.T) {
	presets := NewPresets[*lms.NodeInfo](NewExprCompiler(NodeEnv))

	require.NoError(t, presets.RegisterAll(map[string]string{
		"orgs":  `nodeType == "Organization"`,
		"users": `isUser`,
	}))
	assert.Equal(t, []string{"orgs", "users"}, presets.Names())

	err := presets.RegisterAll(map[string]string{
		"sites": `subType == "Site"`,
		"bad":   `bogus`,
	})
	require.Error(t, err)
	assert.Equal(t, []string{"orgs", "users"}, presets.Names())

	named, err := presets.Resolve("orgs")
	require.NoError(t, err)
	assert.Equal(t, `nodeType == "Organization"`, named.Expression())

	inline, err := presets.Resolve(`nodeId == 7`)
	require.NoError(t, err)
	assert.True(t, inline.Match(&lms.NodeInfo{NodeID: 7}))

	_, err = presets.Get("sites")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func BenchmarkQualificationFilter(b *testing.B) {
	f, err := NewExprCompiler(QualificationEnv).Compile(`requirementCount > 2 and icontains(name, "cert")`)
	require.NoError(b, err)
	q := &lms.QualificationInfo{Name: "Forklift Cert", RequirementIDs: []int{1, 2, 3}}

	b.ResetTimer()
	for b.Loop() {
		f.Match(q)
	}
}
