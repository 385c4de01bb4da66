// Package scitab is a small supervised-learning toolkit for tabular data with
// categorical attributes, written in the style of scikit-learn.
//
// The centre of the library is an ID3 decision-tree classifier. Three simpler
// learners share its conventions and can be used as baselines:
//
//   - sklearn/tree: ID3 decision tree (information gain, default-class fallback)
//   - sklearn/rule: OneR single-attribute rule learner
//   - sklearn/naive_bayes: categorical Naive Bayes with additive smoothing
//   - sklearn/neighbors: k-nearest-neighbor classifier on numeric features
//
// Categorical learners take rows as [][]string and labels as []string. Every
// learner is created unfitted, configured with functional options, trained by
// one call to Fit, and then only read by Predict. Values that were never seen
// during training are not errors: they are answered with the training set's
// majority class.
//
// # Quick Start
//
//	X := [][]string{
//	    {"Sunny", "Hot"}, {"Sunny", "Hot"}, {"Overcast", "Hot"}, {"Rain", "Mild"},
//	}
//	y := []string{"No", "No", "Yes", "Yes"}
//
//	dt := tree.NewDecisionTreeClassifier(tree.WithFeatureNames("Outlook", "Temperature"))
//	if err := dt.Fit(X, y); err != nil {
//	    log.Fatal(err)
//	}
//	preds, _ := dt.Predict([][]string{{"Sunny", "Mild"}, {"Snowy", "Hot"}})
//	fmt.Println(preds) // [No No]
//
//	text, _ := dt.ExportText(nil)
//	fmt.Println(text)
//
// # Errors and logging
//
// Errors are typed (see pkg/errors) and carry stack traces from
// github.com/cockroachdb/errors. Estimators log through pkg/log, which writes
// JSON with zerolog by default; call log.SetupLogger to switch to log/slog.
package scitab
