package deps

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/taskhub-dev/taskhub/internal/models"
	"github.com/taskhub-dev/taskhub/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = gdb.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Milestone{},
		&models.Task{},
		&models.Dependency{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return gdb
}

func seedGraph(t *testing.T, gdb *gorm.DB, taskCount int, edges [][2]int) (uint, []models.Task) {
	t.Helper()

	var userCount int64
	if err := gdb.Model(&models.User{}).Count(&userCount).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}

	owner := models.User{Name: "owner", Email: fmt.Sprintf("owner%d@example.com", userCount+1), PasswordHash: "x"}
	if err := gdb.Create(&owner).Error; err != nil {
		t.Fatalf("seed owner: %v", err)
	}

	project := models.Project{Name: "proj", OwnerID: owner.ID}
	if err := gdb.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}

	milestone := models.Milestone{ProjectID: project.ID, Name: "m"}
	if err := gdb.Create(&milestone).Error; err != nil {
		t.Fatalf("seed milestone: %v", err)
	}

	tasks := make([]models.Task, taskCount)
	for i := range tasks {
		tasks[i] = models.Task{
			MilestoneID: milestone.ID,
			Title:       "t",
			Status:      types.StatusToDo,
			StartDate:   time.Now(),
			DueDate:     time.Now(),
			Deadline:    time.Now(),
		}
		if err := gdb.Create(&tasks[i]).Error; err != nil {
			t.Fatalf("seed task %d: %v", i, err)
		}
	}

	for _, edge := range edges {
		dependency := models.Dependency{
			FromTaskID: tasks[edge[0]].ID,
			ToTaskID:   tasks[edge[1]].ID,
			Type:       types.DepFinishToStart,
		}
		if err := gdb.Create(&dependency).Error; err != nil {
			t.Fatalf("seed edge %v: %v", edge, err)
		}
	}

	return project.ID, tasks
}

func TestAcyclicGraphHasNoCycles(t *testing.T) {
	gdb := testDB(t)
	projectID, _ := seedGraph(t, gdb, 3, [][2]int{{0, 1}, {1, 2}, {0, 2}})

	cycles, err := FindCycles(gdb, projectID)
	if err != nil {
		t.Fatalf("FindCycles: %v", err)
	}
	if len(cycles) != 0 {
		t.Fatalf("cycles = %v, want none", cycles)
	}
}

func TestThreeTaskCycleIsReported(t *testing.T) {
	gdb := testDB(t)
	projectID, tasks := seedGraph(t, gdb, 3, [][2]int{{0, 1}, {1, 2}, {2, 0}})

	cycles, err := FindCycles(gdb, projectID)
	if err != nil {
		t.Fatalf("FindCycles: %v", err)
	}
	if len(cycles) != 1 {
		t.Fatalf("cycles = %v, want exactly one", cycles)
	}
	if len(cycles[0]) != 3 {
		t.Fatalf("cycle length = %d, want 3", len(cycles[0]))
	}

	members := make(map[uint]bool)
	for _, id := range cycles[0] {
		members[id] = true
	}
	for _, task := range tasks {
		if !members[task.ID] {
			t.Fatalf("task %d missing from cycle %v", task.ID, cycles[0])
		}
	}
}

func TestSelfLoopIsReported(t *testing.T) {
	gdb := testDB(t)
	projectID, tasks := seedGraph(t, gdb, 1, [][2]int{{0, 0}})

	cycles, err := FindCycles(gdb, projectID)
	if err != nil {
		t.Fatalf("FindCycles: %v", err)
	}
	if len(cycles) != 1 || len(cycles[0]) != 1 || cycles[0][0] != tasks[0].ID {
		t.Fatalf("cycles = %v, want self-loop on %d", cycles, tasks[0].ID)
	}
}

func TestOtherProjectEdgesIgnored(t *testing.T) {
	gdb := testDB(t)
	projectID, _ := seedGraph(t, gdb, 2, [][2]int{{0, 1}})

	// A cyclic graph in a second project must not leak into the first.
	otherID, _ := seedGraph(t, gdb, 2, [][2]int{{0, 1}, {1, 0}})

	cycles, err := FindCycles(gdb, projectID)
	if err != nil {
		t.Fatalf("FindCycles: %v", err)
	}
	if len(cycles) != 0 {
		t.Fatalf("cycles = %v, want none in project %d", cycles, projectID)
	}

	cycles, err = FindCycles(gdb, otherID)
	if err != nil {
		t.Fatalf("FindCycles(other): %v", err)
	}
	if len(cycles) != 1 {
		t.Fatalf("cycles = %v, want one in project %d", cycles, otherID)
	}
}
