package algorithms

import (
	"container/heap"
	"errors"
	"math"

	"pileup-backend/models"
)

// ErrNoPath - 목표까지 경로가 없음
var ErrNoPath = errors.New("no path to target")

// Obstacle - 원형 장애물 (다른 로봇)
type Obstacle struct {
	Center models.Point
	Radius float64
}

// Node - A* 노드
type Node struct {
	x, y    int
	g, h, f float64
	parent  *Node
	index   int // for heap
}

// PriorityQueue - A* 우선순위 큐
type PriorityQueue []*Node

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	return pq[i].f < pq[j].f
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *PriorityQueue) Push(x interface{}) {
	n := len(*pq)
	node := x.(*Node)
	node.index = n
	*pq = append(*pq, node)
}

func (pq *PriorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*pq = old[0 : n-1]
	return node
}

// Grid - 필드 위의 점유 격자
type Grid struct {
	Width    int
	Height   int
	CellSize float64
	originX  float64 // 격자 (0,0)의 월드 X 좌표 (-W/2)
	blocked  []bool
}

// NewFieldGrid - 필드 치수로 격자 생성
func NewFieldGrid(field models.FieldGeometry, cellSize float64) *Grid {
	w := int(math.Ceil(field.Width/cellSize)) + 1
	h := int(math.Ceil(field.Length/cellSize)) + 1
	return &Grid{
		Width:    w,
		Height:   h,
		CellSize: cellSize,
		originX:  -field.Width / 2,
		blocked:  make([]bool, w*h),
	}
}

// AddObstacle - 원형 장애물 주변 셀을 막음 (margin만큼 팽창)
func (g *Grid) AddObstacle(obs Obstacle, margin float64) {
	r := obs.Radius + margin
	minX, minY := g.worldToGrid(models.Point{X: obs.Center.X - r, Y: obs.Center.Y - r})
	maxX, maxY := g.worldToGrid(models.Point{X: obs.Center.X + r, Y: obs.Center.Y + r})

	for gy := minY; gy <= maxY; gy++ {
		for gx := minX; gx <= maxX; gx++ {
			if !g.IsValid(gx, gy) {
				continue
			}
			c := g.gridToWorld(gx, gy)
			if math.Hypot(c.X-obs.Center.X, c.Y-obs.Center.Y) < r {
				g.blocked[gy*g.Width+gx] = true
			}
		}
	}
}

// IsValid - 격자 범위 내 검사
func (g *Grid) IsValid(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// IsObstacle - 막힌 셀인지
func (g *Grid) IsObstacle(x, y int) bool {
	return g.blocked[y*g.Width+x]
}

// FindPath - A* 알고리즘으로 경로 찾기
//
// 시작 셀은 막혀 있어도 출발을 허용한다. 시작과 목표가 같으면
// 시작점 하나만 반환한다.
func (g *Grid) FindPath(start, goal models.Point) ([]models.Point, error) {
	if start == goal {
		return []models.Point{start}, nil
	}

	sx, sy := g.worldToGrid(start)
	gx, gy := g.worldToGrid(goal)

	if !g.IsValid(sx, sy) || !g.IsValid(gx, gy) || g.IsObstacle(gx, gy) {
		return nil, ErrNoPath
	}

	openSet := make(PriorityQueue, 0)
	heap.Init(&openSet)
	closedSet := make(map[int]bool)
	gScores := make(map[int]float64)

	startNode := &Node{x: sx, y: sy}
	startNode.h = heuristic(sx, sy, gx, gy)
	startNode.f = startNode.h
	heap.Push(&openSet, startNode)
	gScores[g.key(sx, sy)] = 0

	for openSet.Len() > 0 {
		current := heap.Pop(&openSet).(*Node)

		if current.x == gx && current.y == gy {
			path := g.reconstructPath(current)
			path[0] = start
			path[len(path)-1] = goal
			return simplifyPath(path, g.CellSize/2), nil
		}

		key := g.key(current.x, current.y)
		if closedSet[key] {
			continue
		}
		closedSet[key] = true

		// 이웃 노드 탐색 (8방향)
		for _, dir := range directions {
			nx, ny := current.x+dir[0], current.y+dir[1]

			if !g.IsValid(nx, ny) || g.IsObstacle(nx, ny) {
				continue
			}

			neighborKey := g.key(nx, ny)
			if closedSet[neighborKey] {
				continue
			}

			moveCost := 1.0
			if dir[0] != 0 && dir[1] != 0 {
				moveCost = math.Sqrt2
			}
			tentativeG := current.g + moveCost

			if existingG, ok := gScores[neighborKey]; ok && tentativeG >= existingG {
				continue
			}
			gScores[neighborKey] = tentativeG

			neighbor := &Node{x: nx, y: ny, g: tentativeG, parent: current}
			neighbor.h = heuristic(nx, ny, gx, gy)
			neighbor.f = neighbor.g + neighbor.h
			heap.Push(&openSet, neighbor)
		}
	}

	return nil, ErrNoPath
}

var directions = [][2]int{
	{0, 1}, {1, 0}, {0, -1}, {-1, 0}, // 상하좌우
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1}, // 대각선
}

func (g *Grid) key(x, y int) int {
	return y*g.Width + x
}

// worldToGrid - 월드 좌표 → 격자 좌표 (가장 가까운 셀)
func (g *Grid) worldToGrid(p models.Point) (int, int) {
	return int(math.Round((p.X - g.originX) / g.CellSize)), int(math.Round(p.Y / g.CellSize))
}

// gridToWorld - 격자 좌표 → 월드 좌표
func (g *Grid) gridToWorld(x, y int) models.Point {
	return models.Point{
		X: g.originX + float64(x)*g.CellSize,
		Y: float64(y) * g.CellSize,
	}
}

// heuristic - 휴리스틱 함수 (유클리드 거리)
func heuristic(x1, y1, x2, y2 int) float64 {
	return math.Hypot(float64(x2-x1), float64(y2-y1))
}

// reconstructPath - 경로 재구성
func (g *Grid) reconstructPath(node *Node) []models.Point {
	var path []models.Point
	for current := node; current != nil; current = current.parent {
		path = append(path, g.gridToWorld(current.x, current.y))
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// simplifyPath - Douglas-Peucker 알고리즘으로 경로 간소화
func simplifyPath(path []models.Point, epsilon float64) []models.Point {
	if len(path) < 3 {
		return path
	}

	// 가장 먼 점 찾기
	dmax := 0.0
	index := 0
	for i := 1; i < len(path)-1; i++ {
		d := perpendicularDistance(path[i], path[0], path[len(path)-1])
		if d > dmax {
			index = i
			dmax = d
		}
	}

	if dmax > epsilon {
		left := simplifyPath(path[:index+1], epsilon)
		right := simplifyPath(path[index:], epsilon)
		out := make([]models.Point, 0, len(left)+len(right)-1)
		out = append(out, left[:len(left)-1]...)
		return append(out, right...)
	}

	return []models.Point{path[0], path[len(path)-1]}
}

// perpendicularDistance - 점에서 선분까지 거리
func perpendicularDistance(point, lineStart, lineEnd models.Point) float64 {
	dx := lineEnd.X - lineStart.X
	dy := lineEnd.Y - lineStart.Y

	if dx == 0 && dy == 0 {
		return math.Hypot(point.X-lineStart.X, point.Y-lineStart.Y)
	}

	t := ((point.X-lineStart.X)*dx + (point.Y-lineStart.Y)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))

	return math.Hypot(point.X-(lineStart.X+t*dx), point.Y-(lineStart.Y+t*dy))
}

// PathLength - 경로 전체 길이
func PathLength(path []models.Point) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += math.Hypot(path[i].X-path[i-1].X, path[i].Y-path[i-1].Y)
	}
	return total
}
