// Package file reads training ratings from a local text file,
// one "user,item,score" row per line.
package file

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pawel-madurski/PredictionIO/pkg/datasource"
	"github.com/pawel-madurski/PredictionIO/pkg/engine"
	"github.com/pawel-madurski/PredictionIO/pkg/tools/common"
	"github.com/pawel-madurski/PredictionIO/pkg/tools/errorutils"
)

type fileSource struct{}

var _ engine.DataSource = &fileSource{}

func (s *fileSource) ReadTraining(ctx context.Context, params engine.Params) (engine.TrainingData, error) {
	path := common.ParamString(params, "path", "")
	if path == "" {
		return engine.TrainingData{}, errorutils.NewDataUnavailableError("file",
			fmt.Errorf("no path bound"))
	}
	f, err := os.Open(path)
	if err != nil {
		return engine.TrainingData{}, errorutils.NewDataUnavailableError(path, err)
	}
	defer f.Close()

	ratings := []datasource.Rating{}
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, ",")
		if len(fields) != 3 {
			return engine.TrainingData{}, errorutils.NewDataUnavailableError(path,
				fmt.Errorf("line %d: expected user,item,score got %q", line, text))
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return engine.TrainingData{}, errorutils.NewDataUnavailableError(path,
				fmt.Errorf("line %d: bad score: %v", line, err))
		}
		ratings = append(ratings, datasource.Rating{
			User:  strings.TrimSpace(fields[0]),
			Item:  strings.TrimSpace(fields[1]),
			Score: score,
		})
	}
	if err := scanner.Err(); err != nil {
		return engine.TrainingData{}, errorutils.NewDataUnavailableError(path, err)
	}
	if len(ratings) == 0 {
		return engine.TrainingData{}, errorutils.NewDataUnavailableError(path,
			fmt.Errorf("no rating rows"))
	}
	return engine.TrainingData{Payload: ratings}, nil
}

func init() {
	engine.RegisterDataSource("file", func() engine.DataSource {
		return &fileSource{}
	})
}
