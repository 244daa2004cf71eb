package colorcode

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/bodgit/colorcode/detector"
	"github.com/bodgit/colorcode/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, file string, img image.Image) {
	f, err := os.Create(file)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestRunnerScan(t *testing.T) {
	dir, err := ioutil.TempDir("", "colorcode")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	indices, img, _ := testSymbol(t, 21)
	session := testSession(t, indices)

	captures := filepath.Join(dir, "captures")
	require.NoError(t, os.MkdirAll(filepath.Join(captures, "nested"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(captures, ".hidden"), 0755))

	good := []string{
		filepath.Join(captures, "a.png"),
		filepath.Join(captures, "nested", "b.png"),
	}
	for _, file := range good {
		writePNG(t, file, img)
	}
	writePNG(t, filepath.Join(captures, ".hidden", "c.png"), img)
	writePNG(t, filepath.Join(captures, "blank.png"), image.NewGray(image.Rect(0, 0, 32, 32)))
	require.NoError(t, ioutil.WriteFile(filepath.Join(captures, "notes.txt"), []byte("ignored"), 0644))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, ioutil.WriteFile(filepath.Join(captures, "truncated.png"), buf.Bytes()[:buf.Len()/2], 0644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(captures, "garbage.jpg"), []byte("not an image"), 0644))

	db, err := NewResultsDB(filepath.Join(dir, "results.db"))
	require.NoError(t, err)
	defer db.Close()

	runner := NewRunner(db, log.New(ioutil.Discard, "", 0), session, detector.Default())
	runner.Workers = 2
	require.NoError(t, runner.Scan(captures))

	runs, err := db.History(10)
	require.NoError(t, err)

	// The blank image is black in every channel but has no finder pattern,
	// the truncated and garbage files cannot be decoded at all
	var images []string
	for _, run := range runs {
		images = append(images, run.Image)
		assert.True(t, run.Passed)
		assert.Equal(t, "test", run.Reference)
		require.Len(t, run.Attempts, 7)
		for i, a := range run.Attempts {
			assert.Equal(t, i+1, a.Step)
			assert.True(t, a.Passed)
			assert.Equal(t, "match", a.Reason)
		}
	}
	sort.Strings(images)
	assert.Equal(t, good, images)
}

func TestRunnerDecodeFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "colorcode")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	indices, _, _ := testSymbol(t, 21)
	other, err := render.Symbol(testDim, 22)
	require.NoError(t, err)
	img, err := render.Image(other, testDim, testScale, testQuiet)
	require.NoError(t, err)

	file := filepath.Join(dir, "other.png")
	writePNG(t, file, img)

	runner := NewRunner(nil, log.New(ioutil.Discard, "", 0), testSession(t, indices), detector.AxisAligned{})
	summary, err := runner.DecodeFile(file)
	require.NoError(t, err)
	assert.False(t, summary.Passed())

	_, err = runner.DecodeFile(filepath.Join(dir, "missing.png"))
	assert.True(t, os.IsNotExist(err))

	truncated := filepath.Join(dir, "truncated.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, ioutil.WriteFile(truncated, buf.Bytes()[:buf.Len()/2], 0644))
	_, err = runner.DecodeFile(truncated)
	assert.True(t, errors.Is(err, errUnreadable))

	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, ioutil.WriteFile(garbage, []byte("not an image"), 0644))
	_, err = runner.DecodeFile(garbage)
	assert.True(t, errors.Is(err, errUnreadable))
	assert.True(t, errors.Is(err, image.ErrFormat))
}

func TestResultsDBRecord(t *testing.T) {
	dir, err := ioutil.TempDir("", "colorcode")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	db, err := NewResultsDB(filepath.Join(dir, "results.db"))
	require.NoError(t, err)
	defer db.Close()

	summary := &Summary{
		Attempts: []Attempt{
			{Step: 1, Layer: "R", Strategy: Binary},
			{Step: 2, Layer: "R", Strategy: Colour, Err: os.ErrInvalid},
		},
	}
	summary.Attempts[0].Report.Passed = true
	summary.Attempts[0].Report.Length = 9

	id, err := db.Record("x.png", "ref.txt", summary)
	require.NoError(t, err)
	assert.NotZero(t, id)

	runs, err := db.History(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.True(t, runs[0].Passed)
	assert.Equal(t, []RunAttempt{
		{Step: 1, Layer: "R", Strategy: "Binary", Passed: true, Reason: "match"},
		{Step: 2, Layer: "R", Strategy: "Colour", Error: os.ErrInvalid.Error()},
	}, runs[0].Attempts)
}
