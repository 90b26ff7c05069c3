package dataprocessing

import (
	"fmt"
	"time"

	"drillsheet/pkg/contracts/domain"
)

// recordBuilder assembles domain records from an extract. One builder is
// used per parse call.
type recordBuilder struct {
	testID   string
	filename string
	pageSize int
	now      time.Time
}

func (b recordBuilder) site(ex *DischargeExtract) *domain.Site {
	m := ex.Meta
	s := &domain.Site{
		SiteID:     ex.SiteID,
		SiteName:   m.SiteName,
		Client:     m.Client,
		Contractor: m.Contractor,
		Province:   m.Province,
		District:   m.District,
		CreatedAt:  b.now,
	}
	if m.Latitude != nil && m.Longitude != nil {
		s.Coordinates = &domain.Coordinates{Lat: *m.Latitude, Lon: *m.Longitude}
	}
	return s
}

func (b recordBuilder) borehole(ex *DischargeExtract) *domain.Borehole {
	m := ex.Meta
	return &domain.Borehole{
		BoreholeID:        ex.BoreholeID,
		SiteID:            ex.SiteID,
		BoreholeNo:        m.BoreholeNo,
		AltBhNo:           m.AltBhNo,
		ProjectNo:         m.ProjectNo,
		MapRef:            m.MapRef,
		ElevationM:        m.ElevationM,
		BoreholeDepthM:    m.BoreholeDepthM,
		DatumAboveCasingM: m.DatumAboveCasingM,
		ExistingPump:      m.ExistingPump,
		StaticWLMbdl:      m.StaticWLMbdl,
		CasingHeightMagl:  m.CasingHeightMagl,
		PumpDepthM:        m.PumpDepthM,
		PumpInletDiamMm:   m.PumpInletDiamMm,
		PumpType:          m.PumpType,
		SWLMbch:           m.SWLMbch,
		CreatedAt:         b.now,
	}
}

func (b recordBuilder) test(ex *DischargeExtract) *domain.DischargeTest {
	m := ex.Meta
	staticWL := m.StaticWLM
	if staticWL == nil {
		staticWL = m.StaticWLMbdl
	}
	return &domain.DischargeTest{
		TestID:      b.testID,
		TestType:    ex.TestType,
		BoreholeRef: BoreholeRef(ex.SiteID, ex.BoreholeID),
		BoreholeID:  ex.BoreholeID,
		SiteID:      ex.SiteID,
		StartTime:   ex.StartTime,
		EndTime:     ex.EndTime,
		Summary: domain.TestSummary{
			AvailableDrawdownM: m.AvailableDrawdownM,
			TotalTimePumpedMin: m.TotalTimePumpedMin,
			StaticWLM:          staticWL,
			Pump: domain.PumpSummary{
				DepthM:      m.PumpDepthM,
				InletDiamMm: m.PumpInletDiamMm,
				Type:        m.PumpType,
			},
		},
		Contractor:     m.Contractor,
		Province:       m.Province,
		SourceFilePath: b.filename,
		Status:         domain.TestStatusDraft,
		CreatedAt:      b.now,
	}
}

// series pages every extracted series. Series IDs number pages across the
// whole test, so they stay unique even when one type spans several pages.
func (b recordBuilder) series(extracted []ExtractedSeries) []domain.Series {
	out := []domain.Series{}
	n := 0
	for _, es := range extracted {
		for page, points := range ChunkPoints(es.Points, b.pageSize) {
			out = append(out, domain.Series{
				SeriesID:   fmt.Sprintf("%s-%d", es.Type, n),
				TestID:     b.testID,
				SeriesType: es.Type,
				RateIndex:  es.RateIndex,
				PageIndex:  page,
				Points:     points,
				CreatedAt:  b.now,
			})
			n++
		}
	}
	return out
}

func (b recordBuilder) quality(extracted []ExtractedQuality) []domain.Quality {
	out := make([]domain.Quality, 0, len(extracted))
	for i, q := range extracted {
		out = append(out, domain.Quality{
			QualityID: fmt.Sprintf("quality-%d", i),
			TestID:    b.testID,
			RateIndex: q.RateIndex,
			PH:        q.PH,
			TempC:     q.TempC,
			ECuScm:    q.ECuScm,
			CreatedAt: b.now,
		})
	}
	return out
}

// BoreholeRef is the hierarchical reference of a borehole within its site.
func BoreholeRef(siteID, boreholeID string) string {
	return fmt.Sprintf("sites/%s/boreholes/%s", siteID, boreholeID)
}
