// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linesearch

import (
	"math"
)

const (
	half       = 0.5
	p66        = 0.66
	trapLower  = 1.1
	trapUpper  = 4.0
	stageDecr  = 1
	stageWolfe = 2
)

// scalarTask is the reverse-communication status of the scalar search.
type scalarTask int

const (
	taskStart scalarTask = 0
	taskConv  scalarTask = 1 << (4 + iota)
	taskEval
	taskError
	taskWarn
)

const (
	errStepUnderMin = taskError | (1 + iota)
	errStepOverMax
	errNotDescentDir
	errBadDecrease
	errBadCurvature
	errBadStepTol
	errBadMinStep
	errBadMaxStep
	warnRoundErr = taskWarn | (1 + iota)
	warnWidthTol
	warnAtMaxStep
	warnAtMinStep
)

func (t scalarTask) describe() string {
	switch t {
	case errStepUnderMin:
		return "trial step below minimum"
	case errStepOverMax:
		return "trial step above maximum"
	case errNotDescentDir:
		return "initial derivative is nonnegative"
	case errBadDecrease, errBadCurvature, errBadStepTol, errBadMinStep, errBadMaxStep:
		return "invalid search tolerances"
	case warnRoundErr:
		return "rounding errors prevent progress"
	case warnWidthTol:
		return "bracket width below tolerance"
	case warnAtMaxStep:
		return "step reached the maximum"
	case warnAtMinStep:
		return "step reached the minimum"
	}
	return "unknown"
}

// scalarTol holds the acceptance tolerances of the scalar search.
type scalarTol struct {
	decrease  float64 // sufficient decrease constant ɑ
	curvature float64 // curvature constant β
	stepTol   float64 // relative width tolerance for the bracket
	minStep   float64
	maxStep   float64
}

// scalarCtx is the state carried between scalarSearch calls.
type scalarCtx struct {
	bracket        bool
	stage          int
	finit, ginit   float64
	fx, gx, fy, gy float64
	stx, sty       float64
	width, width1  float64
	stmin, stmax   float64
}

// scalarSearch finds a step λ along the one-dimensional function φ that
// satisfies the strong Wolfe conditions
//   - sufficient decrease: φ(λ) ≤ φ(0) + ɑ·λ·φ′(0)
//   - curvature: |φ′(λ)| ≤ β·|φ′(0)|
//
// The routine is driven by reverse communication: on taskEval the caller
// must evaluate φ and φ′ at the returned step and call again. Each call
// updates a bracket [stx, sty] initially chosen to contain a minimizer of
// the modified function ψ(λ) = φ(λ) - φ(0) - ɑ·λ·φ′(0); once ψ(λ) ≤ 0 and
// φ′(λ) ≥ 0 for some step the bracket switches to containing a minimizer
// of φ itself. If no acceptable step exists the search stops with a
// warning and the step satisfies only the sufficient decrease condition.
func scalarSearch(f, g, stp float64, task scalarTask, tol *scalarTol, ctx *scalarCtx) (float64, scalarTask) {

	if task == taskStart {
		switch {
		case stp < tol.minStep:
			task = errStepUnderMin
		case stp > tol.maxStep:
			task = errStepOverMax
		case g >= 0:
			task = errNotDescentDir
		case tol.decrease < 0:
			task = errBadDecrease
		case tol.curvature < 0:
			task = errBadCurvature
		case tol.stepTol < 0:
			task = errBadStepTol
		case tol.minStep < 0:
			task = errBadMinStep
		case tol.maxStep < tol.minStep:
			task = errBadMaxStep
		}
		if task&taskError > 0 {
			return stp, task
		}

		ctx.bracket = false
		ctx.stage = stageDecr
		ctx.finit, ctx.ginit = f, g
		ctx.width = tol.maxStep - tol.minStep
		ctx.width1 = ctx.width / half

		ctx.stx, ctx.fx, ctx.gx = 0, ctx.finit, ctx.ginit
		ctx.sty, ctx.fy, ctx.gy = 0, ctx.finit, ctx.ginit
		ctx.stmin = 0
		ctx.stmax = stp + trapUpper*stp
		return stp, taskEval
	}

	gTest := tol.decrease * ctx.ginit
	fTest := ctx.finit + stp*gTest

	switch {
	case ctx.bracket && (stp <= ctx.stmin || stp >= ctx.stmax):
		task = warnRoundErr
	case ctx.bracket && ctx.stmax-ctx.stmin <= tol.stepTol*ctx.stmax:
		task = warnWidthTol
	case stp == tol.maxStep && f <= fTest && g <= gTest:
		task = warnAtMaxStep
	case stp == tol.minStep && (f > fTest || g >= gTest):
		task = warnAtMinStep
	case f <= fTest && math.Abs(g) <= tol.curvature*(-ctx.ginit):
		task = taskConv
	}
	if task&(taskWarn|taskConv) > 0 {
		return stp, task
	}

	if ctx.stage == stageDecr && f <= fTest && g >= 0 {
		ctx.stage = stageWolfe
	}

	// While only the sufficient decrease holds, work on the modified
	// function ψ instead of φ.
	if ctx.stage == stageDecr && f <= ctx.fx && f > fTest {
		fm := f - stp*gTest
		fxm := ctx.fx - ctx.stx*gTest
		fym := ctx.fy - ctx.sty*gTest
		gm := g - gTest
		gxm := ctx.gx - gTest
		gym := ctx.gy - gTest
		trialStep(&ctx.stx, &fxm, &gxm, &ctx.sty, &fym, &gym, &stp, fm, gm, &ctx.bracket, ctx.stmin, ctx.stmax)
		ctx.fx = fxm + ctx.stx*gTest
		ctx.fy = fym + ctx.sty*gTest
		ctx.gx = gxm + gTest
		ctx.gy = gym + gTest
	} else {
		trialStep(&ctx.stx, &ctx.fx, &ctx.gx, &ctx.sty, &ctx.fy, &ctx.gy, &stp, f, g, &ctx.bracket, ctx.stmin, ctx.stmax)
	}

	// Force a bisection step if the bracket shrinks too slowly.
	if ctx.bracket {
		if math.Abs(ctx.sty-ctx.stx) >= p66*ctx.width1 {
			stp = ctx.stx + half*(ctx.sty-ctx.stx)
		}
		ctx.width1 = ctx.width
		ctx.width = math.Abs(ctx.sty - ctx.stx)
	}

	if ctx.bracket {
		ctx.stmin = math.Min(ctx.stx, ctx.sty)
		ctx.stmax = math.Max(ctx.stx, ctx.sty)
	} else {
		ctx.stmin = stp + trapLower*(stp-ctx.stx)
		ctx.stmax = stp + trapUpper*(stp-ctx.stx)
	}

	stp = math.Min(math.Max(stp, tol.minStep), tol.maxStep)

	if ctx.bracket && (stp <= ctx.stmin || stp >= ctx.stmax) ||
		(ctx.bracket && ctx.stmax-ctx.stmin <= tol.stepTol*ctx.stmax) {
		stp = ctx.stx
	}

	return stp, taskEval
}

// trialStep computes a safeguarded trial step and updates the bracket.
//
// stx holds the step with the least function value so far; when bracket is
// true a minimizer lies between stx and sty with min(stx,sty) < stp <
// max(stx,sty), and the derivative at stx is negative in the direction of
// the step. The trial step combines cubic and secant (quadratic)
// interpolants of the evaluations at stx, sty and stp.
func trialStep(
	stx, fx, dx *float64,
	sty, fy, dy *float64,
	stp *float64, fp, dp float64,
	bracket *bool, stmin, stmax float64) {

	var gamma, p, q, r, s, stpc, stpf, stpq, theta float64

	sgnd := dp * (*dx / math.Abs(*dx))

	switch {
	case fp > *fx:
		// Higher function value: the minimum is bracketed. Take the cubic
		// step if it is closer to stx than the quadratic one, otherwise
		// their average.
		theta = 3*(*fx-fp)/(*stp-*stx) + *dx + dp
		s = math.Max(math.Max(math.Abs(theta), math.Abs(*dx)), math.Abs(dp))
		gamma = s * math.Sqrt((theta/s)*(theta/s)-(*dx/s)*(dp/s))
		if *stp < *stx {
			gamma = -gamma
		}
		p = (gamma - *dx) + theta
		q = ((gamma - *dx) + gamma) + dp
		r = p / q
		stpc = *stx + r*(*stp-*stx)
		stpq = *stx + ((*dx/((*fx-fp)/(*stp-*stx)+*dx))/2)*(*stp-*stx)
		if math.Abs(stpc-*stx) < math.Abs(stpq-*stx) {
			stpf = stpc
		} else {
			stpf = stpc + (stpq-stpc)/2
		}
		*bracket = true

	case sgnd < 0:
		// Lower function value with derivatives of opposite sign: the
		// minimum is bracketed. Take the cubic step if it is farther from
		// stp than the secant step, otherwise the secant step.
		theta = 3*(*fx-fp)/(*stp-*stx) + *dx + dp
		s = math.Max(math.Max(math.Abs(theta), math.Abs(*dx)), math.Abs(dp))
		gamma = s * math.Sqrt((theta/s)*(theta/s)-(*dx/s)*(dp/s))
		if *stp > *stx {
			gamma = -gamma
		}
		p = (gamma - dp) + theta
		q = ((gamma - dp) + gamma) + *dx
		r = p / q
		stpc = *stp + r*(*stx-*stp)
		stpq = *stp + (dp/(dp-*dx))*(*stx-*stp)
		if math.Abs(stpc-*stp) > math.Abs(stpq-*stp) {
			stpf = stpc
		} else {
			stpf = stpq
		}
		*bracket = true

	case math.Abs(dp) < math.Abs(*dx):
		// Lower function value, same derivative sign, decreasing magnitude.
		// The cubic step is used only when the cubic tends to infinity in
		// the direction of the step or its minimum lies beyond stp.
		theta = 3*(*fx-fp)/(*stp-*stx) + *dx + dp
		s = math.Max(math.Max(math.Abs(theta), math.Abs(*dx)), math.Abs(dp))
		// gamma == 0 only when the cubic does not tend to infinity in the
		// direction of the step.
		gamma = s * math.Sqrt((theta/s)*(theta/s)-(*dx/s)*(dp/s))
		if *stp > *stx {
			gamma = -gamma
		}
		p = (gamma - dp) + theta
		q = (gamma + (*dx - dp)) + gamma
		r = p / q
		if r < 0 && gamma != 0 {
			stpc = *stp + r*(*stx-*stp)
		} else if *stp > *stx {
			stpc = stmax
		} else {
			stpc = stmin
		}
		stpq = *stp + (dp/(dp-*dx))*(*stx-*stp)
		if *bracket {
			if math.Abs(stpc-*stp) < math.Abs(stpq-*stp) {
				stpf = stpc
			} else {
				stpf = stpq
			}
			if *stp > *stx {
				stpf = math.Min(*stp+p66*(*sty-*stp), stpf)
			} else {
				stpf = math.Max(*stp+p66*(*sty-*stp), stpf)
			}
		} else {
			if math.Abs(stpc-*stp) > math.Abs(stpq-*stp) {
				stpf = stpc
			} else {
				stpf = stpq
			}
			stpf = math.Min(stmax, stpf)
			stpf = math.Max(stmin, stpf)
		}

	default:
		// Lower function value, same derivative sign, non-decreasing
		// magnitude. Without a bracket the step goes to a bound, otherwise
		// the cubic step from the far endpoint is taken.
		if *bracket {
			theta = 3*(fp-*fy)/(*sty-*stp) + *dy + dp
			s = math.Max(math.Max(math.Abs(theta), math.Abs(*dy)), math.Abs(dp))
			gamma = s * math.Sqrt((theta/s)*(theta/s)-(*dy/s)*(dp/s))
			if *stp > *sty {
				gamma = -gamma
			}
			p = (gamma - dp) + theta
			q = ((gamma - dp) + gamma) + *dy
			r = p / q
			stpc = *stp + r*(*sty-*stp)
			stpf = stpc
		} else if *stp > *stx {
			stpf = stmax
		} else {
			stpf = stmin
		}
	}

	// Update the bracket.
	if fp > *fx {
		*sty = *stp
		*fy = fp
		*dy = dp
	} else {
		if sgnd < 0 {
			*sty = *stx
			*fy = *fx
			*dy = *dx
		}
		*stx = *stp
		*fx = fp
		*dx = dp
	}
	*stp = stpf
}
