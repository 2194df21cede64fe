// Package deps reports dependency cycles between a project's tasks. Edges
// are stored without acyclicity validation, so this is a read operation for
// callers that need to know, not a write-time rejection.
package deps

import (
	"github.com/taskhub-dev/taskhub/internal/models"
	"gorm.io/gorm"
)

// FindCycles returns every cycle among the dependency edges of projectID's
// tasks, each as the task IDs along the cycle in edge order. An empty result
// means the graph is acyclic.
func FindCycles(gdb *gorm.DB, projectID uint) ([][]uint, error) {
	var edges []models.Dependency

	err := gdb.
		Joins("JOIN tasks ON tasks.id = dependencies.from_task_id").
		Joins("JOIN milestones ON milestones.id = tasks.milestone_id").
		Where("milestones.project_id = ?", projectID).
		Find(&edges).Error

	if err != nil {
		return nil, err
	}

	adjacency := make(map[uint][]uint)
	for _, edge := range edges {
		adjacency[edge.FromTaskID] = append(adjacency[edge.FromTaskID], edge.ToTaskID)
	}

	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)

	state := make(map[uint]int)
	var stack []uint
	var cycles [][]uint

	var visit func(node uint)
	visit = func(node uint) {
		state[node] = inStack
		stack = append(stack, node)

		for _, next := range adjacency[node] {
			switch state[next] {
			case unvisited:
				visit(next)
			case inStack:
				// Slice the stack from the first occurrence of next: that
				// segment is the cycle.
				for i, id := range stack {
					if id == next {
						cycle := make([]uint, len(stack)-i)
						copy(cycle, stack[i:])
						cycles = append(cycles, cycle)
						break
					}
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[node] = done
	}

	for node := range adjacency {
		if state[node] == unvisited {
			visit(node)
		}
	}

	return cycles, nil
}
