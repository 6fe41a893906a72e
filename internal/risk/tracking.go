package risk

// Counts are the risk figures recorded with every snapshot.
type Counts struct {
	HighDependency     int
	SignificantDecline int
	Top5Share          float64
	Exposed            int
}

func CountsOf(ind Indicators, exposed int) Counts {
	return Counts{
		HighDependency:     ind.HighDependency,
		SignificantDecline: len(ind.SignificantDecline),
		Top5Share:          ind.Top5Share,
		Exposed:            exposed,
	}
}

// Tracking compares the current counts with those of the previous distinct
// dataset.
type Tracking struct {
	Current     Counts
	Previous    Counts
	HasPrevious bool
}

func NewTracking(current Counts, previous *Counts) Tracking {
	t := Tracking{Current: current}
	if previous != nil {
		t.Previous, t.HasPrevious = *previous, true
	}
	return t
}

func (t Tracking) HighDependencyDelta() int {
	return t.Current.HighDependency - t.Previous.HighDependency
}

func (t Tracking) DeclineDelta() int {
	return t.Current.SignificantDecline - t.Previous.SignificantDecline
}

func (t Tracking) Top5Delta() float64 {
	return t.Current.Top5Share - t.Previous.Top5Share
}

func (t Tracking) ExposedDelta() int {
	return t.Current.Exposed - t.Previous.Exposed
}
