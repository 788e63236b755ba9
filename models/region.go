package models

// Region - 공 위치 분류 결과
type Region string

const (
	RegionAttackingLeftCorner  Region = "attacking_left_corner"
	RegionAttackingRightCorner Region = "attacking_right_corner"
	RegionAttackingIllegal     Region = "attacking_illegal_zone"
	RegionDefendingLeftCorner  Region = "defending_left_corner"
	RegionDefendingRightCorner Region = "defending_right_corner"
	RegionDefendingIllegal     Region = "defending_illegal_zone"
	RegionLeftFlank            Region = "left_flank"
	RegionRightFlank           Region = "right_flank"
	RegionCenterField          Region = "center_field"
)

// AllRegions - 분류 가능한 모든 영역
var AllRegions = []Region{
	RegionAttackingLeftCorner,
	RegionAttackingRightCorner,
	RegionAttackingIllegal,
	RegionDefendingLeftCorner,
	RegionDefendingRightCorner,
	RegionDefendingIllegal,
	RegionLeftFlank,
	RegionRightFlank,
	RegionCenterField,
}

var regionMessages = map[Region]string{
	RegionAttackingLeftCorner:  "pileup in attacking left corner",
	RegionAttackingRightCorner: "pileup in attacking right corner",
	RegionAttackingIllegal:     "pileup in illegal zone. let go immediately.",
	RegionDefendingLeftCorner:  "pileup in defending left corner",
	RegionDefendingRightCorner: "pileup in defending right corner",
	RegionDefendingIllegal:     "pileup in illegal zone. this should never occur.",
	RegionLeftFlank:            "pileup on left flank",
	RegionRightFlank:           "pileup in right flank",
	RegionCenterField:          "pileup in center of field",
}

// Message - 영역별 상태 메시지
func (r Region) Message() string {
	return regionMessages[r]
}

// IsIllegal - 파일업 대기 위치를 잡지 않는 영역인지
func (r Region) IsIllegal() bool {
	return r == RegionAttackingIllegal || r == RegionDefendingIllegal
}

// IsValid - 알려진 영역인지
func (r Region) IsValid() bool {
	_, ok := regionMessages[r]
	return ok
}
