package grpc_control

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"gpu-price-tracker/src/analysis"
	"gpu-price-tracker/src/interfaces"
	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/models"
)

// QueryService implements TrackerQueryServer over a series store.
type QueryService struct {
	Config *models.MConfig
	Store  interfaces.ISeriesStore
	Facade *analysis.AnalysisFacade
	Logger *logger.Logger
	Now    func() time.Time
}

// NewQueryService creates a new instance of QueryService
func NewQueryService(cfg *models.MConfig, store interfaces.ISeriesStore, log *logger.Logger) *QueryService {
	if log == nil {
		log = logger.Discard("QueryService")
	}
	return &QueryService{
		Config: cfg,
		Store:  store,
		Facade: analysis.NewAnalysisFacade(cfg, log.Named("Analysis")),
		Logger: log,
		Now:    time.Now,
	}
}

// -----------------------------------------------------------------------------

// toStruct converts any JSON-serializable value to a Struct.
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// -----------------------------------------------------------------------------

func (s *QueryService) ListSeries(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	keys, err := s.Store.Keys(ctx)
	if err != nil {
		s.Logger.Error("gRPC: ListSeries failed: %v", err)
		return nil, status.Errorf(codes.Internal, "listing series: %v", err)
	}

	ids := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, k.ID())
	}
	return structpb.NewStruct(map[string]interface{}{"series": ids})
}

// -----------------------------------------------------------------------------

func (s *QueryService) read(ctx context.Context, id string) ([]models.Snapshot, error) {
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "series id is required")
	}
	key := models.ParseSeriesID(id, s.Config.Tracking.SocketPartitions)
	series, err := s.Store.Read(ctx, key)
	if err != nil {
		s.Logger.Error("gRPC: reading %s failed: %v", id, err)
		return nil, status.Errorf(codes.Internal, "reading series %s: %v", id, err)
	}
	if len(series) == 0 {
		return nil, status.Errorf(codes.NotFound, "series %s not found", id)
	}
	return series, nil
}

// -----------------------------------------------------------------------------

// GetLatest returns the last snapshot without reading the whole series.
func (s *QueryService) GetLatest(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id := req.GetValue()
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "series id is required")
	}
	latest, err := s.Store.Latest(ctx, models.ParseSeriesID(id, s.Config.Tracking.SocketPartitions))
	if err != nil {
		s.Logger.Error("gRPC: reading latest of %s failed: %v", id, err)
		return nil, status.Errorf(codes.Internal, "reading series %s: %v", id, err)
	}
	if latest == nil {
		return nil, status.Errorf(codes.NotFound, "series %s not found", id)
	}
	out, err := toStruct(latest)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding snapshot: %v", err)
	}
	return out, nil
}

// -----------------------------------------------------------------------------

// GetTrend expects {id, window, smooth}. window defaults to the viewer
// default and smooth to the configured smoothing.
func (s *QueryService) GetTrend(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	id := fields["id"].GetStringValue()
	windowStr := s.Config.Viewer.DefaultWindow
	if v, ok := fields["window"]; ok {
		switch kind := v.GetKind().(type) {
		case *structpb.Value_StringValue:
			windowStr = kind.StringValue
		case *structpb.Value_NumberValue:
			windowStr = strconv.FormatFloat(kind.NumberValue, 'f', -1, 64)
		}
	}
	window, err := analysis.ParseTimeWindow(windowStr)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	smooth := s.Config.Viewer.Smoothing
	if v, ok := fields["smooth"]; ok {
		smooth = v.GetBoolValue()
	}

	series, err := s.read(ctx, id)
	if err != nil {
		return nil, err
	}
	points := s.Facade.Trend(series, window, smooth, s.Now().UTC())

	out, err := toStruct(map[string]interface{}{
		"series_id": models.ParseSeriesID(id, s.Config.Tracking.SocketPartitions).ID(),
		"window":    window.String(),
		"bucket":    analysis.RuleFor(window).Name,
		"smooth":    smooth,
		"points":    points,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding trend: %v", err)
	}
	s.Logger.Debug("gRPC: GetTrend %s %s -> %d points", id, window, len(points))
	return out, nil
}
