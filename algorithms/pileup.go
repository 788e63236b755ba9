package algorithms

import (
	"fmt"
	"math"

	"pileup-backend/models"
)

// RandomSource - center_field 분기 선택에 쓰는 난수원 (*rand.Rand가 만족)
type RandomSource interface {
	Intn(n int) int
}

// Boundaries - 필드 치수에서 유도한 분류 경계값
type Boundaries struct {
	TheirEnd float64 `json:"their_end"` // 7L/8 이상이면 공격 진영 끝
	OurEnd   float64 `json:"our_end"`   // L/8 이하이면 수비 진영 끝
	Left     float64 `json:"left"`      // 왼쪽 1/3 경계
	Right    float64 `json:"right"`     // 오른쪽 1/3 경계
	Dist     float64 `json:"dist"`      // 코너 배치 반경 L/9
	HalfDist float64 `json:"half_dist"`
}

// NewBoundaries - 필드 치수로 경계값 계산
//
// 치수 검증은 호출자 책임이다. 폭이 0이면 Left == Right 가 되어
// 가운데 영역이 사라진다.
func NewBoundaries(field models.FieldGeometry) Boundaries {
	base := -(field.Width / 2)
	dist := field.Length / 9

	return Boundaries{
		TheirEnd: (field.Length * 7) / 8,
		OurEnd:   field.Length / 8,
		Left:     base + field.Width/3,
		Right:    base + (field.Width*2)/3,
		Dist:     dist,
		HalfDist: dist / 2,
	}
}

// Offset - 측면/중앙 배치에 쓰는 좌표 오프셋
//
// NOTE: halfDist 자체가 아니라 sqrt(halfDist)를 쓴다. 반경 dist 원 위의
// 대각선 점을 의도했다면 dist/sqrt(2)가 맞지만, 현재 동작을 유지한다.
func (b Boundaries) Offset() float64 {
	return math.Sqrt(b.HalfDist)
}

// Classify - 공 위치를 9개 영역 중 하나로 분류 (우선순위 순서, 첫 일치)
func (b Boundaries) Classify(ball models.Point) models.Region {
	switch {
	case ball.Y >= b.TheirEnd:
		switch {
		case ball.X <= b.Left:
			return models.RegionAttackingLeftCorner
		case ball.X >= b.Right:
			return models.RegionAttackingRightCorner
		default:
			return models.RegionAttackingIllegal
		}
	case ball.Y <= b.OurEnd:
		switch {
		case ball.X <= b.Left:
			return models.RegionDefendingLeftCorner
		case ball.X >= b.Right:
			return models.RegionDefendingRightCorner
		default:
			return models.RegionDefendingIllegal
		}
	default:
		switch {
		case ball.X <= b.Left:
			return models.RegionLeftFlank
		case ball.X >= b.Right:
			return models.RegionRightFlank
		default:
			return models.RegionCenterField
		}
	}
}

// ComputePileupPlan - 공 위치로 대기 지점 0~2개 계산
func ComputePileupPlan(ball models.Point, field models.FieldGeometry, rng RandomSource) models.PileupPlan {
	b := NewBoundaries(field)
	region := b.Classify(ball)

	plan := models.PileupPlan{
		Region:  region,
		Message: region.Message(),
		Ball:    ball,
		Targets: []models.Point{},
		Option:  -1,
	}

	x, y := ball.X, ball.Y
	o := b.Offset()

	switch region {
	case models.RegionAttackingLeftCorner, models.RegionAttackingRightCorner:
		plan.Targets = append(plan.Targets, models.Point{X: x, Y: y - b.Dist})

	case models.RegionDefendingLeftCorner, models.RegionDefendingRightCorner:
		plan.Targets = append(plan.Targets, models.Point{X: x, Y: y + b.Dist})

	case models.RegionLeftFlank:
		plan.Targets = append(plan.Targets,
			models.Point{X: x + o, Y: y + o},
			models.Point{X: x + o, Y: y - o},
		)

	case models.RegionRightFlank:
		plan.Targets = append(plan.Targets,
			models.Point{X: x - o, Y: y + o},
			models.Point{X: x - o, Y: y - o},
		)

	case models.RegionCenterField:
		plan.Option = rng.Intn(2)
		if plan.Option == 0 {
			plan.Targets = append(plan.Targets,
				models.Point{X: x - o, Y: y - o},
				models.Point{X: x + o, Y: y + o},
			)
		} else {
			plan.Targets = append(plan.Targets,
				models.Point{X: x - o, Y: y + o},
				models.Point{X: x + o, Y: y - o},
			)
		}
		plan.Message = fmt.Sprintf("%s - option %d", region.Message(), plan.Option+1)
	}

	return plan
}
