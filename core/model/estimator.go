// Package model defines the estimator contracts shared by the scitab learners,
// together with fitted-state bookkeeping and input validation.
package model

import "gonum.org/v1/gonum/mat"

// Classifier は名義特徴量の表データを扱う分類器のインターフェース
//
// X は行ごとの属性値、y は X と同じ長さのクラスラベル。
// Predict は行数と同じ数のラベルを、入力と同じ順序で返す。
type Classifier interface {
	// Fit はモデルを訓練データで学習させる。以前の学習結果は置き換えられる。
	Fit(X [][]string, y []string) error

	// Predict は各行のクラスラベルを予測する
	Predict(X [][]string) ([]string, error)
}

// NumericClassifier は数値特徴量の行列を扱う分類器のインターフェース
type NumericClassifier interface {
	Fit(X mat.Matrix, y []string) error
	Predict(X mat.Matrix) ([]string, error)
}

// ClassifierWithScore は正解率を返せる分類器
type ClassifierWithScore interface {
	Classifier

	// Score は X に対する予測と y の一致率を [0, 1] で返す
	Score(X [][]string, y []string) (float64, error)
}

// ParameterGetter はハイパーパラメータを公開するモデルのインターフェース
type ParameterGetter interface {
	GetParams() map[string]interface{}
}

// ParameterSetter はハイパーパラメータの変更を許すモデルのインターフェース
type ParameterSetter interface {
	SetParams(params map[string]interface{}) error
}
