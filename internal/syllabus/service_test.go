package syllabus

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbuddy/campusbuddy-go/internal/config"
	"github.com/campusbuddy/campusbuddy-go/internal/extract"
	"github.com/campusbuddy/campusbuddy-go/internal/logger"
	"github.com/campusbuddy/campusbuddy-go/internal/metrics"
)

const serviceSyllabus = `Course Title: Operating Systems
Unit 1: Processes, scheduling, context switching 6 Hours
Unit 2: Memory management, paging, segmentation 8 Hours
Course Outcomes
Students will understand operating systems.
`

func newTestService(t *testing.T) *Service {
	t.Helper()

	path := filepath.Join(t.TempDir(), "syllabus.txt")
	require.NoError(t, os.WriteFile(path, []byte(serviceSyllabus), 0o644))

	log := logger.New("error")
	extractor := extract.New(0, log, metrics.New(prometheus.NewRegistry()))
	locator := NewLocator(config.Limits{}, log)
	return NewService(path, extractor, locator, log)
}

func TestServiceLookup(t *testing.T) {
	svc := newTestService(t)

	content, err := svc.Lookup("Operating Systems", "2")
	require.NoError(t, err)
	assert.Contains(t, content.Format(), "Memory management")
	assert.NotContains(t, content.Format(), "Course Outcomes")
}

func TestServiceCachesText(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Lookup("Operating Systems", "1")
	require.NoError(t, err)

	// Removing the file must not affect later lookups.
	require.NoError(t, os.Remove(svc.path))

	content, err := svc.Lookup("Operating Systems", "1")
	require.NoError(t, err)
	assert.Contains(t, content.Format(), "scheduling")
}

func TestServiceConcurrentFirstLoad(t *testing.T) {
	svc := newTestService(t)

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Lookup("Operating Systems", "1")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestServiceMissingFile(t *testing.T) {
	log := logger.New("error")
	extractor := extract.New(0, log, metrics.New(prometheus.NewRegistry()))
	locator := NewLocator(config.Limits{}, log)
	svc := NewService(filepath.Join(t.TempDir(), "absent.pdf"), extractor, locator, log)

	_, err := svc.Lookup("Operating Systems", "1")
	assert.Error(t, err)
}
