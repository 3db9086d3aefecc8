package modelstore

import (
	"testing"

	"github.com/pawel-madurski/PredictionIO/pkg/tools/errorutils"
	_ "github.com/pawel-madurski/PredictionIO/pkg/tools/log"
	"github.com/rs/xid"
	. "github.com/smartystreets/goconvey/convey"
)

const testRedisAddr = "127.0.0.1:6379"

// newTestRedisstore skips the test when no redis answers locally, the
// localstore tests keep covering the Store properties either way
func newTestRedisstore(t *testing.T) Store {
	t.Helper()
	s := NewRedisstoreAt(testRedisAddr, "prediction-test-"+xid.New().String()+":")
	rs := s.(*redisstore)
	if err := rs.client.Ping(rs.ctx).Err(); err != nil {
		t.Skipf("no redis at %s: %v", testRedisAddr, err)
	}
	t.Cleanup(func() {
		keys, err := rs.client.Keys(rs.ctx, rs.prefix+"*").Result()
		if err == nil && len(keys) > 0 {
			rs.client.Del(rs.ctx, keys...)
		}
		rs.client.Close()
	})
	return s
}

func TestRedisstore_NextInstanceID(t *testing.T) {
	Convey("ids are assigned monotonically", t, func() {
		s := newTestRedisstore(t)
		first, err := s.NextInstanceID()
		So(err, ShouldBeNil)
		So(first, ShouldEqual, "1")
		second, err := s.NextInstanceID()
		So(err, ShouldBeNil)
		So(second, ShouldEqual, "2")
	})
}

func TestRedisstore_SaveAndGet(t *testing.T) {
	Convey("a saved instance round-trips", t, func() {
		s := newTestRedisstore(t)
		saved := newTestInstance("1", StatusTrained)
		So(s.SaveInstance(saved), ShouldBeNil)

		got, err := s.GetInstance("1")
		So(err, ShouldBeNil)
		So(got.ID, ShouldEqual, "1")
		So(got.Status, ShouldEqual, StatusTrained)
		So(got.Algorithms, ShouldResemble, saved.Algorithms)
		So(got.Models, ShouldResemble, saved.Models)
	})

	Convey("an unknown instance is not found", t, func() {
		s := newTestRedisstore(t)
		_, err := s.GetInstance("42")
		So(err, ShouldEqual, ErrInstanceNotFound)
	})

	Convey("a rewrite moving the status backwards is rejected", t, func() {
		s := newTestRedisstore(t)
		So(s.SaveInstance(newTestInstance("1", StatusTrained)), ShouldBeNil)
		err := s.SaveInstance(newTestInstance("1", StatusTraining))
		So(err, ShouldHaveSameTypeAs, &errorutils.DeployInconsistencyError{})
	})
}

func TestRedisstore_ListOrder(t *testing.T) {
	Convey("records list by numeric id, oldest first", t, func() {
		s := newTestRedisstore(t)
		for _, id := range []string{"2", "10", "1"} {
			So(s.SaveInstance(newTestInstance(id, StatusTrained)), ShouldBeNil)
		}
		instances, err := s.ListInstances()
		So(err, ShouldBeNil)
		ids := make([]string, 0, len(instances))
		for _, instance := range instances {
			ids = append(ids, instance.ID)
		}
		So(ids, ShouldResemble, []string{"1", "2", "10"})
	})
}

func TestRedisstore_SetCurrent(t *testing.T) {
	Convey("only a trained instance is deployable", t, func() {
		s := newTestRedisstore(t)
		So(s.SaveInstance(newTestInstance("1", StatusTraining)), ShouldBeNil)

		err := s.SetCurrent("1")
		So(err, ShouldHaveSameTypeAs, &errorutils.DeployInconsistencyError{})
		current, err := s.GetCurrent()
		So(err, ShouldBeNil)
		So(current, ShouldEqual, "")

		So(s.UpdateStatus("1", StatusTrained), ShouldBeNil)
		So(s.SetCurrent("1"), ShouldBeNil)
		current, err = s.GetCurrent()
		So(err, ShouldBeNil)
		So(current, ShouldEqual, "1")
		got, err := s.GetInstance("1")
		So(err, ShouldBeNil)
		So(got.Status, ShouldEqual, StatusDeployed)
	})

	Convey("deploying an unknown instance is not found", t, func() {
		s := newTestRedisstore(t)
		So(s.SetCurrent("42"), ShouldEqual, ErrInstanceNotFound)
	})

	Convey("a rejected deploy keeps the previous pointer", t, func() {
		s := newTestRedisstore(t)
		So(s.SaveInstance(newTestInstance("1", StatusTrained)), ShouldBeNil)
		So(s.SaveInstance(newTestInstance("2", StatusFailed)), ShouldBeNil)
		So(s.SetCurrent("1"), ShouldBeNil)
		So(s.SetCurrent("2"), ShouldNotBeNil)
		current, err := s.GetCurrent()
		So(err, ShouldBeNil)
		So(current, ShouldEqual, "1")
	})
}
