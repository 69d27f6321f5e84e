package mapdef

import "github.com/Rushhhy/sim-game/internal/grid"

// Category ids of the structures the default village ships with.
const (
	CategoryMine     = 28
	CategoryRefinery = 31
	CategoryMarket   = 38
)

func rect(x0, y0, x1, y1 int) Rect {
	return Rect{Min: grid.Cell{X: x0, Y: y0}, Max: grid.Cell{X: x1, Y: y1}}
}

func cells(xy ...[2]int) []grid.Cell {
	out := make([]grid.Cell, len(xy))
	for i, p := range xy {
		out[i] = grid.Cell{X: p[0], Y: p[1]}
	}
	return out
}

// Village returns the default village map: the hand-tuned boundary, its
// carve-outs, four forbidden cells at the market entrance, two markets, a
// refinery and five mines.
func Village() Document {
	home := grid.Cell{X: 0, Y: 40}
	return Document{
		Name: "village",
		Boundary: []Rect{
			rect(-27, 33, 18, 52),
			rect(-30, 26, -8, 31),
			rect(-28, 32, 11, 32),
			rect(-28, 25, -9, 25),
			rect(-28, 36, -28, 53),
			rect(19, 36, 20, 50),
			rect(-22, 53, -9, 55),
			rect(-8, 53, -2, 54),
			rect(-1, 53, 12, 55),
			rect(-7, 28, -6, 31),
			rect(-4, 28, 7, 28),
			rect(7, 29, 11, 29),
			rect(21, 38, 21, 44),
		},
		ExtraBoundary: cells(
			[2]int{1, 29}, [2]int{0, 31}, [2]int{1, 31}, [2]int{2, 31}, [2]int{-5, 31}, [2]int{-5, 30},
			[2]int{-5, 29}, [2]int{7, 31}, [2]int{8, 31}, [2]int{19, 34}, [2]int{19, 35}, [2]int{22, 40},
			[2]int{22, 41}, [2]int{22, 42}, [2]int{19, 51}, [2]int{19, 52}, [2]int{8, 56}, [2]int{9, 56},
			[2]int{10, 56}, [2]int{11, 56}, [2]int{12, 56}, [2]int{1, 56}, [2]int{2, 56}, [2]int{3, 56},
			[2]int{-11, 56}, [2]int{-10, 56}, [2]int{-9, 56}, [2]int{-20, 56}, [2]int{-19, 56}, [2]int{-18, 56},
			[2]int{-17, 56}, [2]int{-16, 56}, [2]int{-23, 54}, [2]int{-27, 53}, [2]int{-26, 53}, [2]int{-29, 53},
			[2]int{-29, 52}, [2]int{-31, 30}, [2]int{-31, 29}, [2]int{-31, 28}, [2]int{-31, 27}, [2]int{-31, 26},
			[2]int{-32, 28}, [2]int{-32, 29}, [2]int{-24, 24}, [2]int{-23, 24}, [2]int{-22, 24}, [2]int{-21, 24},
			[2]int{-20, 24}, [2]int{-19, 24}, [2]int{-18, 24}, [2]int{-28, 36}, [2]int{-23, 53}, [2]int{13, 33},
			[2]int{8, 28}, [2]int{9, 28}, [2]int{10, 28}, [2]int{11, 28}, [2]int{9, 31}, [2]int{0, 30},
			[2]int{2, 30}, [2]int{7, 30}, [2]int{9, 30},
		),
		CarveOut: []Rect{
			rect(12, 36, 18, 39),
			rect(-24, 33, -18, 36),
		},
		RemoveCells: cells(
			[2]int{-5, 29}, [2]int{-24, 32}, [2]int{-23, 32}, [2]int{-19, 32}, [2]int{-18, 32}, [2]int{12, 35},
			[2]int{13, 35}, [2]int{17, 35}, [2]int{18, 35}, [2]int{-24, 53}, [2]int{-23, 54}, [2]int{-22, 54},
			[2]int{-21, 54}, [2]int{-20, 54}, [2]int{-20, 53}, [2]int{-18, 56}, [2]int{-19, 55}, [2]int{-19, 54},
			[2]int{-20, 55}, [2]int{-20, 56}, [2]int{-19, 56}, [2]int{-20, 57}, [2]int{-21, 56}, [2]int{-22, 56},
			[2]int{-23, 56}, [2]int{-24, 55}, [2]int{-24, 56}, [2]int{9, 56}, [2]int{9, 55}, [2]int{9, 54},
			[2]int{10, 56}, [2]int{10, 55}, [2]int{10, 54}, [2]int{10, 53}, [2]int{11, 56}, [2]int{11, 55},
			[2]int{12, 56}, [2]int{12, 55}, [2]int{13, 56}, [2]int{13, 55}, [2]int{14, 56}, [2]int{14, 55},
			[2]int{14, 54}, [2]int{14, 53}, [2]int{11, 53}, [2]int{12, 54}, [2]int{11, 54}, [2]int{8, 56},
			[2]int{14, 35}, [2]int{-23, 53}, [2]int{-21, 53}, [2]int{-22, 32}, [2]int{-20, 32}, [2]int{16, 35},
			[2]int{-8, 54}, [2]int{-7, 54}, [2]int{-6, 54}, [2]int{-4, 54}, [2]int{-3, 54}, [2]int{-2, 54},
			[2]int{10, 32}, [2]int{11, 32}, [2]int{9, 29}, [2]int{7, 29},
		),
		Forbidden: cells([2]int{0, 30}, [2]int{2, 30}, [2]int{7, 30}, [2]int{9, 30}),
		Fixed: []Fixed{
			{
				Name:     "market-west",
				Category: CategoryMarket,
				Owner:    0,
				Cells: cells(
					[2]int{-4, 29}, [2]int{-3, 29}, [2]int{-2, 29}, [2]int{-1, 29},
					[2]int{-4, 27}, [2]int{-3, 27}, [2]int{-2, 27}, [2]int{-1, 27},
				),
			},
			{
				Name:     "market-east",
				Category: CategoryMarket,
				Owner:    1,
				Cells: cells(
					[2]int{3, 29}, [2]int{4, 29}, [2]int{5, 29}, [2]int{6, 29},
					[2]int{3, 27}, [2]int{4, 27}, [2]int{5, 27}, [2]int{6, 27},
				),
			},
			{
				Name:     "refinery",
				Category: CategoryRefinery,
				Owner:    2,
				Cells:    cells([2]int{10, 30}, [2]int{11, 30}, [2]int{12, 30}),
			},
			{
				Name:     "mine-1",
				Category: CategoryMine,
				Owner:    3,
				Cells:    cells([2]int{14, 37}, [2]int{15, 37}, [2]int{16, 37}, [2]int{14, 36}, [2]int{15, 36}),
			},
			{
				Name:     "mine-2",
				Category: CategoryMine,
				Owner:    4,
				Cells:    cells([2]int{-22, 33}, [2]int{-21, 33}, [2]int{-20, 33}, [2]int{-22, 34}, [2]int{-21, 34}, [2]int{-20, 34}),
			},
			{
				Name:     "mine-3",
				Category: CategoryMine,
				Owner:    5,
				Cells:    cells([2]int{-6, 55}, [2]int{-5, 55}, [2]int{-4, 55}, [2]int{-6, 56}, [2]int{-5, 56}, [2]int{-4, 56}),
			},
			{
				Name:     "mine-4",
				Category: CategoryMine,
				Owner:    6,
				Cells:    cells([2]int{-23, 54}, [2]int{-22, 54}, [2]int{-21, 54}, [2]int{-23, 55}, [2]int{-22, 55}, [2]int{-21, 55}),
			},
			{
				Name:     "mine-5",
				Category: CategoryMine,
				Owner:    7,
				Cells:    cells([2]int{11, 54}, [2]int{12, 54}, [2]int{13, 54}, [2]int{11, 55}, [2]int{12, 55}, [2]int{13, 55}),
			},
		},
		Home: &home,
	}
}
