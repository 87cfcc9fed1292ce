package training

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// LinearRegression is ordinary least squares solved through the normal
// equations.
type LinearRegression struct {
	Weights   []float64
	Intercept float64
	Trained   bool
}

// NewLinearRegression creates an untrained OLS model.
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

// Fit solves (XᵀX)w = Xᵀy with an intercept column.
func (lr *LinearRegression) Fit(X [][]float64, y []float64) error {
	weights, err := solveNormalEquations(X, y, 0)
	if err != nil {
		return err
	}
	lr.Intercept = weights[0]
	lr.Weights = weights[1:]
	lr.Trained = true
	return nil
}

// Predict returns the linear combination for one sample.
func (lr *LinearRegression) Predict(x []float64) (float64, error) {
	return linearPredict(lr.Trained, lr.Weights, lr.Intercept, x)
}

func (lr *LinearRegression) Name() string { return "linear_regression" }

func (lr *LinearRegression) Params() map[string]any {
	return map[string]any{}
}

// RidgeRegression is OLS with an L2 penalty on the weights.
type RidgeRegression struct {
	Alpha     float64
	Weights   []float64
	Intercept float64
	Trained   bool
}

// NewRidgeRegression creates a ridge model with the given penalty.
func NewRidgeRegression(alpha float64) *RidgeRegression {
	return &RidgeRegression{Alpha: alpha}
}

// Fit solves (XᵀX + αI)w = Xᵀy; the intercept is not penalized.
func (rr *RidgeRegression) Fit(X [][]float64, y []float64) error {
	weights, err := solveNormalEquations(X, y, rr.Alpha)
	if err != nil {
		return err
	}
	rr.Intercept = weights[0]
	rr.Weights = weights[1:]
	rr.Trained = true
	return nil
}

func (rr *RidgeRegression) Predict(x []float64) (float64, error) {
	return linearPredict(rr.Trained, rr.Weights, rr.Intercept, x)
}

func (rr *RidgeRegression) Name() string { return "ridge" }

func (rr *RidgeRegression) Params() map[string]any {
	return map[string]any{"alpha": rr.Alpha}
}

// LassoRegression is linear regression with an L1 penalty, fit by cyclic
// coordinate descent with soft thresholding.
type LassoRegression struct {
	Alpha     float64
	MaxIter   int
	Tol       float64
	Weights   []float64
	Intercept float64
	Trained   bool
}

// NewLassoRegression creates a lasso model with the given penalty.
func NewLassoRegression(alpha float64) *LassoRegression {
	return &LassoRegression{Alpha: alpha, MaxIter: 1000, Tol: 1e-6}
}

// Fit runs coordinate descent until the largest weight update falls
// below tolerance or MaxIter is hit.
func (la *LassoRegression) Fit(X [][]float64, y []float64) error {
	if err := validateTrainingData(X, y); err != nil {
		return err
	}
	n := len(X)
	p := len(X[0])

	maxIter := la.MaxIter
	if maxIter <= 0 {
		maxIter = 1000
	}
	tol := la.Tol
	if tol <= 0 {
		tol = 1e-6
	}

	// Center the target; the intercept absorbs the means.
	var yMean float64
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(n)

	colMeans := make([]float64, p)
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			colMeans[j] += X[i][j]
		}
		colMeans[j] /= float64(n)
	}

	// Column squared norms of the centered design matrix.
	colNorms := make([]float64, p)
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			d := X[i][j] - colMeans[j]
			colNorms[j] += d * d
		}
	}

	w := make([]float64, p)
	residual := make([]float64, n)
	for i := 0; i < n; i++ {
		residual[i] = y[i] - yMean
	}

	lambda := la.Alpha * float64(n)
	for iter := 0; iter < maxIter; iter++ {
		maxDelta := 0.0
		for j := 0; j < p; j++ {
			if colNorms[j] == 0 {
				continue
			}
			// rho = Xⱼᵀ(residual + Xⱼ wⱼ)
			var rho float64
			for i := 0; i < n; i++ {
				xij := X[i][j] - colMeans[j]
				rho += xij * (residual[i] + xij*w[j])
			}
			newW := softThreshold(rho, lambda) / colNorms[j]
			if newW != w[j] {
				delta := newW - w[j]
				for i := 0; i < n; i++ {
					residual[i] -= (X[i][j] - colMeans[j]) * delta
				}
				if math.Abs(delta) > maxDelta {
					maxDelta = math.Abs(delta)
				}
				w[j] = newW
			}
		}
		if maxDelta < tol {
			break
		}
	}

	intercept := yMean
	for j := 0; j < p; j++ {
		intercept -= w[j] * colMeans[j]
	}

	la.Weights = w
	la.Intercept = intercept
	la.Trained = true
	return nil
}

func (la *LassoRegression) Predict(x []float64) (float64, error) {
	return linearPredict(la.Trained, la.Weights, la.Intercept, x)
}

func (la *LassoRegression) Name() string { return "lasso" }

func (la *LassoRegression) Params() map[string]any {
	return map[string]any{"alpha": la.Alpha}
}

func softThreshold(z, gamma float64) float64 {
	switch {
	case z > gamma:
		return z - gamma
	case z < -gamma:
		return z + gamma
	default:
		return 0
	}
}

// solveNormalEquations returns [intercept, w1..wp] for the (optionally
// ridge-penalized) least squares problem.
func solveNormalEquations(X [][]float64, y []float64, alpha float64) ([]float64, error) {
	if err := validateTrainingData(X, y); err != nil {
		return nil, err
	}
	n := len(X)
	p := len(X[0])

	design := mat.NewDense(n, p+1, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
		for j := 0; j < p; j++ {
			design.Set(i, j+1, X[i][j])
		}
	}
	target := mat.NewVecDense(n, append([]float64(nil), y...))

	var xtx mat.Dense
	xtx.Mul(design.T(), design)
	if alpha > 0 {
		for j := 1; j <= p; j++ { // intercept unpenalized
			xtx.Set(j, j, xtx.At(j, j)+alpha)
		}
	}

	var xty mat.VecDense
	xty.MulVec(design.T(), target)

	var weights mat.VecDense
	if err := weights.SolveVec(&xtx, &xty); err != nil {
		return nil, fmt.Errorf("normal equations are singular: %w", err)
	}

	out := make([]float64, p+1)
	for j := 0; j <= p; j++ {
		out[j] = weights.AtVec(j)
	}
	return out, nil
}

func linearPredict(trained bool, weights []float64, intercept float64, x []float64) (float64, error) {
	if !trained {
		return 0, fmt.Errorf("model has not been trained")
	}
	if len(x) != len(weights) {
		return 0, fmt.Errorf("expected %d features, got %d", len(weights), len(x))
	}
	pred := intercept
	for i, v := range x {
		pred += weights[i] * v
	}
	return pred, nil
}
