package distribution

import (
	"errors"
	"sync"
	"testing"

	"postify/internal/domain"
)

func TestRegistryCreateAndGet(t *testing.T) {
	reg := NewRegistry()

	id := reg.Create("Diwali", 5)
	if id == "" {
		t.Fatal("Create returned an empty id")
	}

	job, err := reg.Get(id)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if job.Status != domain.JobStatusRunning {
		t.Fatalf("status = %s", job.Status)
	}
	if job.Holiday != "Diwali" || job.TotalRecipients != 5 {
		t.Fatalf("job = %+v", job)
	}
	if job.StartedAt.IsZero() {
		t.Fatal("StartedAt not set")
	}
	if job.Results == nil {
		t.Fatal("Results must start as an empty slice, not nil")
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Get("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestRegistryGetReturnsCopy(t *testing.T) {
	reg := NewRegistry()
	id := reg.Create("Holi", 1)

	snapshot, err := reg.Get(id)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	snapshot.Status = domain.JobStatusFailed
	snapshot.Results = append(snapshot.Results, domain.RecipientResult{Phone: "x"})

	fresh, err := reg.Get(id)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if fresh.Status != domain.JobStatusRunning {
		t.Fatal("mutating a snapshot leaked into the registry")
	}
	if len(fresh.Results) != 0 {
		t.Fatal("appending to a snapshot leaked into the registry")
	}
}

func TestRegistryUpdate(t *testing.T) {
	reg := NewRegistry()
	id := reg.Create("Holi", 2)

	err := reg.Update(id, func(job *domain.DistributionJob) {
		job.Processed = 2
		job.Successful = 1
		job.Failed = 1
		job.Status = domain.JobStatusCompleted
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	job, _ := reg.Get(id)
	if job.Processed != 2 || job.Successful != 1 || job.Failed != 1 {
		t.Fatalf("counters = %+v", job)
	}
	if job.Status != domain.JobStatusCompleted {
		t.Fatalf("status = %s", job.Status)
	}
}

func TestRegistryUpdateUnknown(t *testing.T) {
	reg := NewRegistry()
	err := reg.Update("nope", func(job *domain.DistributionJob) {})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestRegistryConcurrentUpdates(t *testing.T) {
	reg := NewRegistry()
	id := reg.Create("Holi", 100)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = reg.Update(id, func(job *domain.DistributionJob) {
				job.Processed++
			})
		}()
	}
	wg.Wait()

	job, _ := reg.Get(id)
	if job.Processed != 100 {
		t.Fatalf("processed = %d, want 100", job.Processed)
	}
}
