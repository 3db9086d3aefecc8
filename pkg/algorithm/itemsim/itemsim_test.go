package itemsim

import (
	"context"
	"testing"

	"github.com/pawel-madurski/PredictionIO/pkg/datasource"
	"github.com/pawel-madurski/PredictionIO/pkg/engine"
	"github.com/pawel-madurski/PredictionIO/pkg/tools/errorutils"
	_ "github.com/pawel-madurski/PredictionIO/pkg/tools/log"
	. "github.com/smartystreets/goconvey/convey"
)

func prepared(ratings []datasource.Rating) engine.PreparedData {
	return engine.PreparedData{Payload: ratings}
}

func twoRatings() []datasource.Rating {
	return []datasource.Rating{
		{User: "1", Item: "22", Score: 5.0},
		{User: "1", Item: "62", Score: 4.0},
	}
}

func TestTrainAndPredict(t *testing.T) {
	Convey("training on two ratings ranks them by descending score", t, func() {
		a := &algorithm{}
		model, err := a.Train(context.Background(), prepared(twoRatings()), nil)
		So(err, ShouldBeNil)

		result, err := a.Predict(model, engine.Query{User: "1", Num: 2})
		So(err, ShouldBeNil)
		So(result.Algorithm, ShouldEqual, Name)
		So(len(result.ItemScores), ShouldEqual, 2)
		So(result.ItemScores[0].Item, ShouldEqual, "22")
		So(result.ItemScores[1].Item, ShouldEqual, "62")
		So(result.ItemScores[0].Score, ShouldBeGreaterThan, result.ItemScores[1].Score)
	})

	Convey("an unknown user is a typed prediction failure", t, func() {
		a := &algorithm{}
		model, err := a.Train(context.Background(), prepared(twoRatings()), nil)
		So(err, ShouldBeNil)
		_, err = a.Predict(model, engine.Query{User: "99", Num: 2})
		So(err, ShouldHaveSameTypeAs, &errorutils.PredictionFailureError{})
	})

	Convey("training without ratings is a train failure", t, func() {
		a := &algorithm{}
		_, err := a.Train(context.Background(), prepared(nil), nil)
		So(err, ShouldHaveSameTypeAs, &errorutils.TrainFailureError{})
	})

	Convey("training with a non rating payload is a train failure", t, func() {
		a := &algorithm{}
		_, err := a.Train(context.Background(), engine.PreparedData{Payload: 42}, nil)
		So(err, ShouldHaveSameTypeAs, &errorutils.TrainFailureError{})
	})
}

func TestPredict_StableOrdering(t *testing.T) {
	Convey("repeated identical queries return identical ordering", t, func() {
		// items 7 and 9 tie exactly, the tie breaks on the item id
		ratings := []datasource.Rating{
			{User: "1", Item: "7", Score: 3.0},
			{User: "1", Item: "9", Score: 3.0},
			{User: "2", Item: "7", Score: 2.0},
			{User: "2", Item: "9", Score: 2.0},
		}
		a := &algorithm{}
		model, err := a.Train(context.Background(), prepared(ratings), nil)
		So(err, ShouldBeNil)

		first, err := a.Predict(model, engine.Query{User: "1", Num: 10})
		So(err, ShouldBeNil)
		for i := 0; i < 20; i++ {
			again, err := a.Predict(model, engine.Query{User: "1", Num: 10})
			So(err, ShouldBeNil)
			So(again.ItemScores, ShouldResemble, first.ItemScores)
		}
		So(first.ItemScores[0].Item, ShouldEqual, "7")
		So(first.ItemScores[1].Item, ShouldEqual, "9")
	})
}

func TestTrain_Reentrant(t *testing.T) {
	Convey("a retrain leaks no state from the previous run", t, func() {
		a := &algorithm{}
		one, err := a.Train(context.Background(), prepared(twoRatings()), nil)
		So(err, ShouldBeNil)
		two, err := a.Train(context.Background(), prepared([]datasource.Rating{
			{User: "5", Item: "70", Score: 2.0},
		}), nil)
		So(err, ShouldBeNil)

		// the first model still answers for user 1, the second never does
		_, err = a.Predict(one, engine.Query{User: "1", Num: 1})
		So(err, ShouldBeNil)
		_, err = a.Predict(two, engine.Query{User: "1", Num: 1})
		So(err, ShouldHaveSameTypeAs, &errorutils.PredictionFailureError{})
	})
}

func TestModelRoundTrip(t *testing.T) {
	Convey("a persisted model answers like the in-memory one", t, func() {
		a := &algorithm{}
		model, err := a.Train(context.Background(), prepared(twoRatings()),
			engine.Params{"similarityWeight": 0.7})
		So(err, ShouldBeNil)

		raw, err := a.MarshalModel(model)
		So(err, ShouldBeNil)
		loaded, err := a.UnmarshalModel(raw)
		So(err, ShouldBeNil)

		for _, q := range []engine.Query{
			{User: "1", Num: 1},
			{User: "1", Num: 2},
			{User: "1", Num: 10},
		} {
			want, err := a.Predict(model, q)
			So(err, ShouldBeNil)
			got, err := a.Predict(loaded, q)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, want)
		}
	})

	Convey("a schema from another version is rejected", t, func() {
		a := &algorithm{}
		_, err := a.UnmarshalModel([]byte(`{"version":2}`))
		So(err, ShouldNotBeNil)
	})

	Convey("marshalling a foreign model type is rejected", t, func() {
		a := &algorithm{}
		_, err := a.MarshalModel("not a model")
		So(err, ShouldNotBeNil)
	})
}
