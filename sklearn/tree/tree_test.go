package tree

import (
	"strings"
	"sync"
	"testing"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scitab/pkg/errors"
	"github.com/YuminosukeSato/scitab/pkg/log"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func fitWeather(t *testing.T, opts ...Option) *DecisionTreeClassifier {
	t.Helper()
	dt := NewDecisionTreeClassifier(opts...)
	require.NoError(t, dt.Fit(weatherX, weatherY))
	return dt
}

func TestDecisionTreeClassifier_WeatherStructure(t *testing.T) {
	dt := fitWeather(t)

	want := &Decision{
		Feature: 0,
		Gain:    0.246749819774439,
		Samples: 14,
		Branches: map[string]Node{
			"Overcast": &Leaf{Class: "Yes", Samples: 4},
			"Rain": &Decision{
				Feature: 3,
				Gain:    0.970950594454668,
				Samples: 5,
				Branches: map[string]Node{
					"Strong": &Leaf{Class: "No", Samples: 2},
					"Weak":   &Leaf{Class: "Yes", Samples: 3},
				},
			},
			"Sunny": &Decision{
				Feature: 2,
				Gain:    0.970950594454668,
				Samples: 5,
				Branches: map[string]Node{
					"High":   &Leaf{Class: "No", Samples: 3},
					"Normal": &Leaf{Class: "Yes", Samples: 2},
				},
			},
		},
	}

	if diff := cmp.Diff(want, dt.Root(), approx); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Yes", dt.DefaultClass())
	assert.Equal(t, []string{"No", "Yes"}, dt.Classes())
	assert.Equal(t, 4, dt.NFeatures())
	assert.Equal(t, 2, dt.GetDepth())
	assert.Equal(t, 5, dt.GetNLeaves())
}

func TestDecisionTreeClassifier_PerfectOnTrainingData(t *testing.T) {
	dt := fitWeather(t)

	preds, err := dt.Predict(weatherX)
	require.NoError(t, err)
	assert.Equal(t, weatherY, preds)

	score, err := dt.Score(weatherX, weatherY)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

// Rows {Sunny,Hot}x2 -> No, {Overcast,Hot} -> Yes, {Rain,Mild} -> Yes.
func TestDecisionTreeClassifier_SplitsOnSeparatingAttribute(t *testing.T) {
	X := [][]string{{"Sunny", "Hot"}, {"Sunny", "Hot"}, {"Overcast", "Hot"}, {"Rain", "Mild"}}
	y := []string{"No", "No", "Yes", "Yes"}

	dt := NewDecisionTreeClassifier()
	require.NoError(t, dt.Fit(X, y))

	root, ok := dt.Root().(*Decision)
	require.True(t, ok, "root should be a Decision, got %T", dt.Root())
	assert.Equal(t, 0, root.Feature)

	sunny, ok := root.Branches["Sunny"].(*Leaf)
	require.True(t, ok)
	assert.Equal(t, "No", sunny.Class)
	assert.Equal(t, 0.0, Entropy([]string{"No", "No"}))

	// Yes/No tie: the default class is the lexicographically smaller label.
	assert.Equal(t, "No", dt.DefaultClass())

	preds, err := dt.Predict([][]string{{"Sunny", "Mild"}, {"Snowy", "Hot"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"No", dt.DefaultClass()}, preds)
}

func TestDecisionTreeClassifier_SingleAttributePerfectSeparation(t *testing.T) {
	X := [][]string{{"a"}, {"b"}, {"a"}, {"b"}}
	y := []string{"P", "Q", "P", "Q"}

	dt := NewDecisionTreeClassifier()
	require.NoError(t, dt.Fit(X, y))

	want := &Decision{
		Feature: 0,
		Gain:    1,
		Samples: 4,
		Branches: map[string]Node{
			"a": &Leaf{Class: "P", Samples: 2},
			"b": &Leaf{Class: "Q", Samples: 2},
		},
	}
	if diff := cmp.Diff(want, dt.Root(), approx); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, dt.GetDepth())

	preds, err := dt.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, y, preds)
}

func TestBuilder_NoAttributesLeft(t *testing.T) {
	X := [][]string{{"x"}, {"y"}, {"z"}}
	y := []string{"A", "A", "B"}
	b := newBuilder(X, y, 1, CriterionEntropy, 0, 2, "A")

	got := b.build([]int{0, 1, 2}, treeset.NewWithIntComparator(), 0)

	if diff := cmp.Diff(Node(&Leaf{Class: "A", Samples: 3}), got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestBuilder_ZeroGainMakesMajorityLeaf(t *testing.T) {
	// Attribute 0 carries no information about the label.
	X := [][]string{{"a"}, {"a"}, {"b"}, {"b"}}
	y := []string{"B", "A", "B", "A"}
	b := newBuilder(X, y, 1, CriterionEntropy, 0, 2, "A")

	got := b.build([]int{0, 1, 2, 3}, attributeSet(1), 0)

	leaf, ok := got.(*Leaf)
	require.True(t, ok, "expected leaf, got %T", got)
	assert.Equal(t, "A", leaf.Class)
}

func TestBuilder_TiedGainPicksLowestAttribute(t *testing.T) {
	// Both attributes separate the labels perfectly.
	X := [][]string{{"a", "x"}, {"b", "y"}}
	y := []string{"P", "Q"}
	b := newBuilder(X, y, 2, CriterionEntropy, 0, 2, "P")

	got := b.build([]int{0, 1}, attributeSet(2), 0)

	d, ok := got.(*Decision)
	require.True(t, ok)
	assert.Equal(t, 0, d.Feature)
}

func TestBuilder_EmptyBucketGetsDefaultClass(t *testing.T) {
	b := newBuilder(weatherX, weatherY, 4, CriterionEntropy, 0, 2, "Yes")

	got := b.branch(nil, attributeSet(4), 1)

	if diff := cmp.Diff(Node(&Leaf{Class: "Yes"}), got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	// 空でなければ通常どおり部分木を作る
	got = b.branch([]int{0, 1}, attributeSet(4), 1)
	if diff := cmp.Diff(Node(&Leaf{Class: "No", Samples: 2}), got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestBuilder_DoesNotModifyCandidateSet(t *testing.T) {
	b := newBuilder(weatherX, weatherY, 4, CriterionEntropy, 0, 2, "Yes")
	attrs := attributeSet(4)

	b.build([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}, attrs, 0)

	assert.Equal(t, []interface{}{0, 1, 2, 3}, attrs.Values())
}

func TestDecisionTreeClassifier_MonotonicAttributeConsumption(t *testing.T) {
	X := [][]string{
		{"a", "x", "p"}, {"a", "y", "p"}, {"b", "x", "q"}, {"b", "y", "p"},
		{"a", "x", "q"}, {"b", "x", "p"}, {"a", "y", "q"}, {"b", "y", "q"},
	}
	y := []string{"1", "2", "2", "1", "1", "2", "1", "2"}

	dt := NewDecisionTreeClassifier()
	require.NoError(t, dt.Fit(X, y))

	walk(dt.Root(), nil, func(n Node, path []int) {
		d, ok := n.(*Decision)
		if !ok {
			return
		}
		assert.NotContains(t, path, d.Feature, "feature %d reused on path %v", d.Feature, path)
	})
}

func TestDecisionTreeClassifier_LeafPurity(t *testing.T) {
	dt := fitWeather(t)

	// 整合的なデータでは、各葉に到達する訓練行はすべて葉のラベルを持つ
	reached := map[*Leaf][]string{}
	for i, row := range weatherX {
		n := dt.Root()
		for {
			if d, ok := n.(*Decision); ok {
				n = d.Branches[row[d.Feature]]
				continue
			}
			break
		}
		leaf := n.(*Leaf)
		reached[leaf] = append(reached[leaf], weatherY[i])
	}
	for leaf, ys := range reached {
		for _, label := range ys {
			assert.Equal(t, leaf.Class, label)
		}
		assert.Equal(t, leaf.Samples, len(ys))
	}
}

func TestDecisionTreeClassifier_Totality(t *testing.T) {
	dt := fitWeather(t)

	X := [][]string{
		{"Sunny", "Hot", "High", "Weak"},
		{"Snowy", "Freezing", "Dry", "Calm"},
		{"Sunny"},
		{},
		nil,
		{"Rain", "Mild", "High", "Gale", "extra"},
	}
	preds, err := dt.Predict(X)
	require.NoError(t, err)
	require.Len(t, preds, len(X))

	assert.Equal(t, "No", preds[0])
	assert.Equal(t, dt.DefaultClass(), preds[1])
	// Sunny routes to the Humidity node, which the short row cannot answer.
	assert.Equal(t, dt.DefaultClass(), preds[2])
	assert.Equal(t, dt.DefaultClass(), preds[3])
	assert.Equal(t, dt.DefaultClass(), preds[4])
	assert.Equal(t, dt.DefaultClass(), preds[5])

	preds, err = dt.Predict(nil)
	require.NoError(t, err)
	assert.Empty(t, preds)
}

func TestDecisionTreeClassifier_Determinism(t *testing.T) {
	X := [][]string{{"a", "x"}, {"b", "y"}, {"a", "y"}, {"b", "x"}, {"c", "x"}}
	y := []string{"Yes", "No", "No", "Yes", "No"}

	first := NewDecisionTreeClassifier()
	require.NoError(t, first.Fit(X, y))
	second := NewDecisionTreeClassifier()
	require.NoError(t, second.Fit(X, y))

	if diff := cmp.Diff(first.Root(), second.Root()); diff != "" {
		t.Errorf("trees differ:\n%s", diff)
	}

	probe := [][]string{{"a", "x"}, {"c", "y"}, {"d", "z"}, {"b"}}
	p1, err := first.Predict(probe)
	require.NoError(t, err)
	p2, err := second.Predict(probe)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}

func TestDecisionTreeClassifier_RefitReplacesState(t *testing.T) {
	dt := fitWeather(t)

	require.NoError(t, dt.Fit([][]string{{"u"}, {"v"}}, []string{"Q", "Q"}))

	assert.Equal(t, Node(&Leaf{Class: "Q", Samples: 2}), dt.Root())
	assert.Equal(t, "Q", dt.DefaultClass())
	assert.Equal(t, 1, dt.NFeatures())
	assert.Equal(t, []string{"Q"}, dt.Classes())
}

func TestDecisionTreeClassifier_ZeroWidthRows(t *testing.T) {
	dt := NewDecisionTreeClassifier()
	require.NoError(t, dt.Fit([][]string{{}, {}, {}}, []string{"B", "A", "B"}))

	assert.Equal(t, Node(&Leaf{Class: "B", Samples: 3}), dt.Root())
	preds, err := dt.Predict([][]string{{}, {"anything"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "B"}, preds)
}

func TestDecisionTreeClassifier_MaxDepth(t *testing.T) {
	dt := fitWeather(t, WithMaxDepth(1))

	assert.Equal(t, 1, dt.GetDepth())
	root := dt.Root().(*Decision)
	assert.Equal(t, &Leaf{Class: "No", Samples: 5}, root.Branches["Sunny"])
	assert.Equal(t, &Leaf{Class: "Yes", Samples: 5}, root.Branches["Rain"])
}

func TestDecisionTreeClassifier_MinSamplesSplit(t *testing.T) {
	dt := fitWeather(t, WithMinSamplesSplit(6))

	assert.Equal(t, 1, dt.GetDepth())
	assert.Equal(t, 3, dt.GetNLeaves())
}

func TestDecisionTreeClassifier_GiniCriterion(t *testing.T) {
	dt := fitWeather(t, WithCriterion(CriterionGini))

	root, ok := dt.Root().(*Decision)
	require.True(t, ok)
	assert.Equal(t, 0, root.Feature)

	score, err := dt.Score(weatherX, weatherY)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestDecisionTreeClassifier_FeatureImportance(t *testing.T) {
	dt := fitWeather(t)

	importances := dt.GetFeatureImportances()
	require.Len(t, importances, 4)

	sum := 0.0
	for _, v := range importances {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Equal(t, 0.0, importances[1], "Temperature is never used")
	assert.InDelta(t, importances[2], importances[3], 1e-12)
	assert.Greater(t, importances[0], 0.0)

	single := NewDecisionTreeClassifier()
	require.NoError(t, single.Fit([][]string{{"a"}, {"b"}}, []string{"X", "X"}))
	assert.Equal(t, []float64{0}, single.GetFeatureImportances())
}

func TestDecisionTreeClassifier_ExportText(t *testing.T) {
	dt := fitWeather(t, WithFeatureNames(weatherFeatures...))

	text, err := dt.ExportText(nil)
	require.NoError(t, err)

	lines := []string{
		"Outlook = Overcast: Yes",
		"Outlook = Rain",
		"Wind = Strong: No",
		"Wind = Weak: Yes",
		"Outlook = Sunny",
		"Humidity = High: No",
		"Humidity = Normal: Yes",
	}
	pos := -1
	for _, line := range lines {
		i := strings.Index(text, line)
		require.Greater(t, i, pos, "%q out of order in:\n%s", line, text)
		pos = i
	}

	text, err = dt.ExportText([]string{"o", "t", "h", "w"})
	require.NoError(t, err)
	assert.Contains(t, text, "o = Overcast: Yes")

	_, err = dt.ExportText([]string{"too", "few"})
	var dim *errors.DimensionError
	assert.True(t, errors.As(err, &dim))

	plain := NewDecisionTreeClassifier()
	require.NoError(t, plain.Fit(weatherX, weatherY))
	text, err = plain.ExportText(nil)
	require.NoError(t, err)
	assert.Contains(t, text, "feature_0 = Overcast: Yes")

	leafOnly := NewDecisionTreeClassifier()
	require.NoError(t, leafOnly.Fit([][]string{{"a"}}, []string{"Z"}))
	text, err = leafOnly.ExportText(nil)
	require.NoError(t, err)
	assert.Contains(t, text, "class: Z")
}

func TestDecisionTreeClassifier_NotFitted(t *testing.T) {
	dt := NewDecisionTreeClassifier()

	assert.Equal(t, Node(&Leaf{}), dt.Root())
	assert.Equal(t, "", dt.DefaultClass())

	_, err := dt.Predict([][]string{{"Sunny"}})
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Predict", nf.Method)

	_, err = dt.ExportText(nil)
	assert.True(t, errors.As(err, &nf))

	_, err = dt.Score([][]string{{"Sunny"}}, []string{"No"})
	assert.Error(t, err)
}

func TestDecisionTreeClassifier_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		X     [][]string
		y     []string
		check func(t *testing.T, err error)
	}{
		{
			name: "empty",
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, errors.ErrEmptyData))
			},
		},
		{
			name: "fewer labels than rows",
			X:    [][]string{{"a"}, {"b"}},
			y:    []string{"x"},
			check: func(t *testing.T, err error) {
				var dim *errors.DimensionError
				assert.True(t, errors.As(err, &dim))
			},
		},
		{
			name: "ragged rows",
			X:    [][]string{{"a", "b"}, {"c"}},
			y:    []string{"x", "y"},
			check: func(t *testing.T, err error) {
				var shape *errors.InputShapeError
				require.True(t, errors.As(err, &shape))
				assert.Equal(t, 1, shape.Row)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt := NewDecisionTreeClassifier()
			err := dt.Fit(tt.X, tt.y)
			require.Error(t, err)
			tt.check(t, err)
			assert.False(t, dt.state.IsFitted())
		})
	}
}

func TestDecisionTreeClassifier_GetSetParams(t *testing.T) {
	dt := NewDecisionTreeClassifier()

	params := dt.GetParams()
	assert.Equal(t, "entropy", params["criterion"])
	assert.Equal(t, 0, params["max_depth"])
	assert.Equal(t, 2, params["min_samples_split"])

	err := dt.SetParams(map[string]interface{}{
		"criterion":         "gini",
		"max_depth":         5,
		"min_samples_split": 4,
		"feature_names":     []string{"a"},
	})
	require.NoError(t, err)
	assert.Equal(t, CriterionGini, dt.criterion)
	assert.Equal(t, 5, dt.maxDepth)
	assert.Equal(t, 4, dt.minSamplesSplit)
	assert.Equal(t, []string{"a"}, dt.featureNames)
	params5 := dt.GetParams()

	var verr *errors.ValidationError
	assert.True(t, errors.As(dt.SetParams(map[string]interface{}{"max_depth": "deep"}), &verr))
	assert.True(t, errors.As(dt.SetParams(map[string]interface{}{"splitter": "best"}), &verr))
	assert.True(t, errors.As(dt.SetParams(map[string]interface{}{"min_samples_split": 1}), &verr))
	assert.True(t, errors.As(dt.SetParams(map[string]interface{}{"criterion": "log_loss"}), &verr))
	assert.Equal(t, params5, dt.GetParams())

	// 一部のキーが正しくても、検証に失敗した呼び出しは何も反映しない
	err = dt.SetParams(map[string]interface{}{
		"max_depth":         1,
		"min_samples_split": 1,
		"criterion":         "entropy",
	})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "min_samples_split", verr.ParamName)
	assert.Equal(t, params5, dt.GetParams())

	bad := NewDecisionTreeClassifier(WithCriterion("log_loss"))
	assert.True(t, errors.As(bad.Fit(weatherX, weatherY), &verr))
}

func TestDecisionTreeClassifier_Logging(t *testing.T) {
	logger := log.NewTestLogger(log.LevelDebug)
	dt := NewDecisionTreeClassifier(WithLogger(logger))
	require.NoError(t, dt.Fit(weatherX, weatherY))

	assert.True(t, logger.ContainsMessage("fit completed"))
	assert.True(t, logger.ContainsField(log.ModelNameKey, modelName))
	assert.True(t, logger.ContainsField(log.TreeDepthKey, 2.0))
	assert.True(t, logger.ContainsField(log.TreeLeavesKey, 5.0))
	assert.True(t, logger.ContainsField(log.DefaultClassKey, "Yes"))

	_, err := dt.Predict([][]string{{"Snowy"}, {"Overcast"}})
	require.NoError(t, err)
	assert.True(t, logger.ContainsField(log.FallbacksKey, 1.0))
}

func TestDecisionTreeClassifier_ConcurrentPredict(t *testing.T) {
	dt := fitWeather(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			preds, err := dt.Predict(weatherX)
			assert.NoError(t, err)
			assert.Equal(t, weatherY, preds)
		}()
	}
	wg.Wait()
}

func BenchmarkDecisionTreeClassifier_Fit(b *testing.B) {
	for i := 0; i < b.N; i++ {
		dt := NewDecisionTreeClassifier()
		if err := dt.Fit(weatherX, weatherY); err != nil {
			b.Fatal(err)
		}
	}
}

func TestDecisionTreeClassifier_AccessorsDuringRefit(t *testing.T) {
	dt := fitWeather(t)
	wantImportances := dt.GetFeatureImportances()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			assert.NoError(t, dt.Fit(weatherX, weatherY))
		}
	}()
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				assert.Equal(t, "Yes", dt.DefaultClass())
				assert.Equal(t, []string{"No", "Yes"}, dt.Classes())
				assert.Equal(t, 4, dt.NFeatures())
				assert.Equal(t, wantImportances, dt.GetFeatureImportances())
			}
		}()
	}
	wg.Wait()
}
