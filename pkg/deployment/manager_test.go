package deployment

import (
	"context"
	"testing"
	"time"

	"github.com/pawel-madurski/PredictionIO/pkg/datasource"
	"github.com/pawel-madurski/PredictionIO/pkg/engine"
	"github.com/pawel-madurski/PredictionIO/pkg/env"
	"github.com/pawel-madurski/PredictionIO/pkg/modelstore"
	"github.com/pawel-madurski/PredictionIO/pkg/tools/errorutils"
	"github.com/pawel-madurski/PredictionIO/pkg/trainer"
	"github.com/spf13/viper"
	. "github.com/smartystreets/goconvey/convey"

	_ "github.com/pawel-madurski/PredictionIO/pkg/algorithm/itemsim"
	_ "github.com/pawel-madurski/PredictionIO/pkg/algorithm/popular"
	_ "github.com/pawel-madurski/PredictionIO/pkg/preparator"
	_ "github.com/pawel-madurski/PredictionIO/pkg/serving"
	_ "github.com/pawel-madurski/PredictionIO/pkg/tools/log"
)

// failPredict trains fine but cannot answer any query
type failPredict struct{}

func (a *failPredict) Train(ctx context.Context, data engine.PreparedData, params engine.Params) (engine.Model, error) {
	return "ok", nil
}

func (a *failPredict) Predict(model engine.Model, query engine.Query) (engine.PredictionResult, error) {
	return engine.PredictionResult{}, errorutils.NewPredictionFailureError("failpredict", "broken")
}

func (a *failPredict) MarshalModel(model engine.Model) ([]byte, error) {
	return []byte("ok"), nil
}

func (a *failPredict) UnmarshalModel(raw []byte) (engine.Model, error) {
	return string(raw), nil
}

// slowPredict trains fine but answers far slower than any query deadline
type slowPredict struct{}

func (a *slowPredict) Train(ctx context.Context, data engine.PreparedData, params engine.Params) (engine.Model, error) {
	return "ok", nil
}

func (a *slowPredict) Predict(model engine.Model, query engine.Query) (engine.PredictionResult, error) {
	time.Sleep(2 * time.Second)
	return engine.PredictionResult{
		Algorithm:  "slowpredict",
		ItemScores: []engine.ItemScore{{Item: "late", Score: 1.0}},
	}, nil
}

func (a *slowPredict) MarshalModel(model engine.Model) ([]byte, error) {
	return []byte("ok"), nil
}

func (a *slowPredict) UnmarshalModel(raw []byte) (engine.Model, error) {
	return string(raw), nil
}

func init() {
	engine.RegisterAlgorithm("failpredict", func() engine.Algorithm { return &failPredict{} })
	engine.RegisterAlgorithm("failpredict2", func() engine.Algorithm { return &failPredict{} })
	engine.RegisterAlgorithm("slowpredict", func() engine.Algorithm { return &slowPredict{} })
}

func buildEngine(t *testing.T, algorithms ...string) *engine.Engine {
	t.Helper()
	cfg := &engine.EngineConfig{
		DataSource: engine.ComponentConfig{Name: "memory"},
		Preparator: engine.ComponentConfig{Name: "identity"},
		Serving:    engine.ComponentConfig{Name: "first"},
	}
	for _, name := range algorithms {
		cfg.Algorithms = append(cfg.Algorithms, engine.ComponentConfig{Name: name})
	}
	eng, err := engine.Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

func setRatings() {
	datasource.Set([]datasource.Rating{
		{User: "1", Item: "22", Score: 5.0},
		{User: "1", Item: "62", Score: 4.0},
	})
}

// trainAndDeploy runs one train and repoints the store at the result
func trainAndDeploy(t *testing.T, store modelstore.Store, eng *engine.Engine) string {
	t.Helper()
	id, err := trainer.NewManager(store, eng).Train(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SetCurrent(id); err != nil {
		t.Fatal(err)
	}
	return id
}

func TestManager_QueryAfterDeploy(t *testing.T) {
	Convey("a trained and deployed instance answers queries", t, func() {
		setRatings()
		store := modelstore.NewLocalstoreAt(t.TempDir())
		eng := buildEngine(t, "itemsim")
		id := trainAndDeploy(t, store, eng)

		m := NewManager(store, eng)
		So(m.Reload(), ShouldBeNil)
		So(m.CurrentInstanceID(), ShouldEqual, id)

		result, err := m.Query(context.Background(), engine.Query{User: "1", Num: 2})
		So(err, ShouldBeNil)
		So(len(result.ItemScores), ShouldEqual, 2)
		So(result.ItemScores[0].Item, ShouldEqual, "22")
		So(result.ItemScores[1].Item, ShouldEqual, "62")
		So(result.ItemScores[0].Score, ShouldBeGreaterThan, result.ItemScores[1].Score)
	})

	Convey("a query before any deploy is no prediction", t, func() {
		store := modelstore.NewLocalstoreAt(t.TempDir())
		m := NewManager(store, buildEngine(t, "itemsim"))
		So(m.Reload(), ShouldBeNil)
		_, err := m.Query(context.Background(), engine.Query{User: "1", Num: 2})
		So(err, ShouldHaveSameTypeAs, &errorutils.NoPredictionAvailableError{})
	})
}

func TestManager_PartialFailure(t *testing.T) {
	Convey("one broken algorithm does not fail the request", t, func() {
		setRatings()
		store := modelstore.NewLocalstoreAt(t.TempDir())
		eng := buildEngine(t, "failpredict", "itemsim")
		trainAndDeploy(t, store, eng)

		m := NewManager(store, eng)
		So(m.Reload(), ShouldBeNil)

		// the first registered algorithm fails, the join drops it and the
		// serving policy sees the survivor first
		result, err := m.Query(context.Background(), engine.Query{User: "1", Num: 2})
		So(err, ShouldBeNil)
		So(result.Algorithm, ShouldEqual, "itemsim")
		So(result.ItemScores[0].Item, ShouldEqual, "22")
	})

	Convey("every algorithm failing is no prediction, never a panic", t, func() {
		setRatings()
		store := modelstore.NewLocalstoreAt(t.TempDir())
		eng := buildEngine(t, "failpredict", "failpredict2")
		trainAndDeploy(t, store, eng)

		m := NewManager(store, eng)
		So(m.Reload(), ShouldBeNil)
		_, err := m.Query(context.Background(), engine.Query{User: "1", Num: 2})
		So(err, ShouldHaveSameTypeAs, &errorutils.NoPredictionAvailableError{})
	})

	Convey("an unknown user with a single algorithm is no prediction", t, func() {
		setRatings()
		store := modelstore.NewLocalstoreAt(t.TempDir())
		eng := buildEngine(t, "itemsim")
		trainAndDeploy(t, store, eng)

		m := NewManager(store, eng)
		So(m.Reload(), ShouldBeNil)
		_, err := m.Query(context.Background(), engine.Query{User: "99", Num: 2})
		So(err, ShouldHaveSameTypeAs, &errorutils.NoPredictionAvailableError{})
	})
}

func TestManager_QueryDeadline(t *testing.T) {
	Convey("a predict exceeding the deadline is dropped from the join", t, func() {
		setRatings()
		store := modelstore.NewLocalstoreAt(t.TempDir())
		eng := buildEngine(t, "slowpredict", "itemsim")
		trainAndDeploy(t, store, eng)

		viper.Set(env.QueryTimeout, 100*time.Millisecond)
		defer viper.Set(env.QueryTimeout, 0)

		m := NewManager(store, eng)
		So(m.Reload(), ShouldBeNil)

		// the survivor answers within the deadline, the join does not
		// wait out the slow algorithm
		start := time.Now()
		result, err := m.Query(context.Background(), engine.Query{User: "1", Num: 2})
		So(err, ShouldBeNil)
		So(result.Algorithm, ShouldEqual, "itemsim")
		So(result.ItemScores[0].Item, ShouldEqual, "22")
		So(time.Since(start), ShouldBeLessThan, time.Second)
	})

	Convey("every algorithm missing the deadline is no prediction", t, func() {
		setRatings()
		store := modelstore.NewLocalstoreAt(t.TempDir())
		eng := buildEngine(t, "slowpredict")
		trainAndDeploy(t, store, eng)

		viper.Set(env.QueryTimeout, 100*time.Millisecond)
		defer viper.Set(env.QueryTimeout, 0)

		m := NewManager(store, eng)
		So(m.Reload(), ShouldBeNil)
		_, err := m.Query(context.Background(), engine.Query{User: "1", Num: 2})
		So(err, ShouldHaveSameTypeAs, &errorutils.NoPredictionAvailableError{})
	})
}

func TestManager_ZeroDowntimeRefresh(t *testing.T) {
	Convey("a newer train leaves answers unchanged until its deploy", t, func() {
		setRatings()
		store := modelstore.NewLocalstoreAt(t.TempDir())
		eng := buildEngine(t, "itemsim")
		trainAndDeploy(t, store, eng)

		m := NewManager(store, eng)
		So(m.Reload(), ShouldBeNil)
		before, err := m.Query(context.Background(), engine.Query{User: "1", Num: 2})
		So(err, ShouldBeNil)
		So(before.ItemScores[0].Item, ShouldEqual, "22")

		// retrain on different data while the first instance stays current
		datasource.Set([]datasource.Rating{
			{User: "1", Item: "99", Score: 5.0},
		})
		newID, err := trainer.NewManager(store, eng).Train(context.Background())
		So(err, ShouldBeNil)

		So(m.Reload(), ShouldBeNil)
		unchanged, err := m.Query(context.Background(), engine.Query{User: "1", Num: 2})
		So(err, ShouldBeNil)
		So(unchanged.ItemScores, ShouldResemble, before.ItemScores)

		// only the deploy makes the new model visible
		So(store.SetCurrent(newID), ShouldBeNil)
		So(m.Reload(), ShouldBeNil)
		So(m.CurrentInstanceID(), ShouldEqual, newID)
		after, err := m.Query(context.Background(), engine.Query{User: "1", Num: 2})
		So(err, ShouldBeNil)
		So(len(after.ItemScores), ShouldEqual, 1)
		So(after.ItemScores[0].Item, ShouldEqual, "99")
	})
}
