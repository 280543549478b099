package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"planetarium/internal/errs"
	"planetarium/internal/models"
)

// MemoryStore implements the service storage contracts in memory. It backs
// the test suites and keeps the same semantics as the Postgres repositories:
// the (session, row, seat) uniqueness check happens inside the same critical
// section as the insert, and a failed batch leaves nothing behind.
type MemoryStore struct {
	mu sync.Mutex

	nextID int64

	users        map[int64]*models.User
	themes       map[int64]*models.ShowTheme
	shows        map[int64]*models.AstronomyShow
	showThemes   map[int64][]int64
	domes        map[int64]*models.PlanetariumDome
	sessions     map[int64]*models.ShowSession
	reservations map[int64]*models.Reservation
	tickets      map[int64]*models.Ticket
	seatIndex    map[string]int64 // "session/row/seat" -> ticket id

	Users        *MemoryUserRepo
	Themes       *MemoryThemeRepo
	Shows        *MemoryShowRepo
	Domes        *MemoryDomeRepo
	Sessions     *MemorySessionRepo
	Reservations *MemoryReservationRepo
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		users:        make(map[int64]*models.User),
		themes:       make(map[int64]*models.ShowTheme),
		shows:        make(map[int64]*models.AstronomyShow),
		showThemes:   make(map[int64][]int64),
		domes:        make(map[int64]*models.PlanetariumDome),
		sessions:     make(map[int64]*models.ShowSession),
		reservations: make(map[int64]*models.Reservation),
		tickets:      make(map[int64]*models.Ticket),
		seatIndex:    make(map[string]int64),
	}
	s.Users = &MemoryUserRepo{s}
	s.Themes = &MemoryThemeRepo{s}
	s.Shows = &MemoryShowRepo{s}
	s.Domes = &MemoryDomeRepo{s}
	s.Sessions = &MemorySessionRepo{s}
	s.Reservations = &MemoryReservationRepo{s}
	return s
}

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

func seatKey(sessionID int64, row, seat int) string {
	return fmt.Sprintf("%d/%d/%d", sessionID, row, seat)
}

// ---- users ----

type MemoryUserRepo struct{ s *MemoryStore }

func (r *MemoryUserRepo) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.UserID = r.s.id()
	user.RegisteredAt = time.Now()
	cp := *user
	r.s.users[user.UserID] = &cp
	return nil
}

func (r *MemoryUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u, ok := r.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// ---- themes ----

type MemoryThemeRepo struct{ s *MemoryStore }

func (r *MemoryThemeRepo) Create(ctx context.Context, theme *models.ShowTheme) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	theme.ID = r.s.id()
	cp := *theme
	r.s.themes[theme.ID] = &cp
	return nil
}

func (r *MemoryThemeRepo) GetByID(ctx context.Context, id int64) (*models.ShowTheme, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if t, ok := r.s.themes[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryThemeRepo) List(ctx context.Context) ([]models.ShowTheme, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var themes []models.ShowTheme
	for _, t := range r.s.themes {
		themes = append(themes, *t)
	}
	sort.Slice(themes, func(i, j int) bool { return themes[i].ID < themes[j].ID })
	return themes, nil
}

func (r *MemoryThemeRepo) Update(ctx context.Context, theme *models.ShowTheme) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.themes[theme.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *theme
	r.s.themes[theme.ID] = &cp
	return nil
}

func (r *MemoryThemeRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.themes[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.s.themes, id)
	for showID, ids := range r.s.showThemes {
		var kept []int64
		for _, tid := range ids {
			if tid != id {
				kept = append(kept, tid)
			}
		}
		r.s.showThemes[showID] = kept
	}
	return nil
}

// ---- shows ----

type MemoryShowRepo struct{ s *MemoryStore }

func (r *MemoryShowRepo) Create(ctx context.Context, show *models.AstronomyShow, themeIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	show.ID = r.s.id()
	cp := *show
	cp.Themes = nil
	r.s.shows[show.ID] = &cp
	r.s.showThemes[show.ID] = append([]int64(nil), themeIDs...)
	return nil
}

func (r *MemoryShowRepo) GetByID(ctx context.Context, id int64) (*models.AstronomyShow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.getLocked(id), nil
}

func (r *MemoryShowRepo) getLocked(id int64) *models.AstronomyShow {
	show, ok := r.s.shows[id]
	if !ok {
		return nil
	}
	cp := *show
	for _, tid := range r.s.showThemes[id] {
		if t, ok := r.s.themes[tid]; ok {
			cp.Themes = append(cp.Themes, *t)
		}
	}
	return &cp
}

func (r *MemoryShowRepo) List(ctx context.Context, title, theme string) ([]models.AstronomyShow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var shows []models.AstronomyShow
	for id := range r.s.shows {
		show := r.getLocked(id)
		if title != "" && !strings.Contains(strings.ToLower(show.Title), strings.ToLower(title)) {
			continue
		}
		if theme != "" {
			matched := false
			for _, t := range show.Themes {
				if strings.Contains(strings.ToLower(t.Name), strings.ToLower(theme)) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		shows = append(shows, *show)
	}
	sort.Slice(shows, func(i, j int) bool { return shows[i].Title < shows[j].Title })
	return shows, nil
}

func (r *MemoryShowRepo) GetByIDs(ctx context.Context, ids []int64) ([]models.AstronomyShow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	shows := make([]models.AstronomyShow, 0, len(ids))
	for _, id := range ids {
		if show := r.getLocked(id); show != nil {
			shows = append(shows, *show)
		}
	}
	return shows, nil
}

func (r *MemoryShowRepo) Update(ctx context.Context, show *models.AstronomyShow, themeIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.shows[show.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *show
	cp.Themes = nil
	r.s.shows[show.ID] = &cp
	r.s.showThemes[show.ID] = append([]int64(nil), themeIDs...)
	return nil
}

func (r *MemoryShowRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.shows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.s.shows, id)
	delete(r.s.showThemes, id)
	for sid, session := range r.s.sessions {
		if session.ShowID == id {
			r.s.deleteSessionLocked(sid)
		}
	}
	return nil
}

// ---- domes ----

type MemoryDomeRepo struct{ s *MemoryStore }

func (r *MemoryDomeRepo) Create(ctx context.Context, dome *models.PlanetariumDome) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	dome.ID = r.s.id()
	cp := *dome
	r.s.domes[dome.ID] = &cp
	return nil
}

func (r *MemoryDomeRepo) GetByID(ctx context.Context, id int64) (*models.PlanetariumDome, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if d, ok := r.s.domes[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryDomeRepo) List(ctx context.Context, country string) ([]models.PlanetariumDome, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var domes []models.PlanetariumDome
	for _, d := range r.s.domes {
		if country != "" {
			if d.Country == nil || !strings.Contains(strings.ToLower(*d.Country), strings.ToLower(country)) {
				continue
			}
		}
		domes = append(domes, *d)
	}
	sort.Slice(domes, func(i, j int) bool { return domes[i].ID < domes[j].ID })
	return domes, nil
}

func (r *MemoryDomeRepo) Update(ctx context.Context, dome *models.PlanetariumDome) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.domes[dome.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *dome
	r.s.domes[dome.ID] = &cp
	return nil
}

func (r *MemoryDomeRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.domes[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.s.domes, id)
	for sid, session := range r.s.sessions {
		if session.DomeID == id {
			r.s.deleteSessionLocked(sid)
		}
	}
	return nil
}

// ---- sessions ----

type MemorySessionRepo struct{ s *MemoryStore }

func (r *MemorySessionRepo) Create(ctx context.Context, session *models.ShowSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session.ID = r.s.id()
	cp := *session
	r.s.sessions[session.ID] = &cp
	return nil
}

func (r *MemorySessionRepo) GetByID(ctx context.Context, id int64) (*models.ShowSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if s, ok := r.s.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *MemorySessionRepo) List(ctx context.Context, showID int64, date string) ([]models.SessionSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var summaries []models.SessionSummary
	for _, session := range r.s.sessions {
		if showID != 0 && session.ShowID != showID {
			continue
		}
		if date != "" && session.ShowTime.Format("2006-01-02") != date {
			continue
		}

		show := r.s.shows[session.ShowID]
		dome := r.s.domes[session.DomeID]
		if show == nil || dome == nil {
			continue
		}

		count := 0
		for _, t := range r.s.tickets {
			if t.SessionID == session.ID {
				count++
			}
		}

		summaries = append(summaries, models.SessionSummary{
			ID:           session.ID,
			ShowTime:     session.ShowTime,
			ShowTitle:    show.Title,
			ShowImageURL: show.ImageURL,
			DomeName:     dome.Name,
			DomeCapacity: dome.Capacity(),
			TicketCount:  count,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ShowTime.After(summaries[j].ShowTime) })
	return summaries, nil
}

func (r *MemorySessionRepo) Update(ctx context.Context, session *models.ShowSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sessions[session.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *session
	r.s.sessions[session.ID] = &cp
	return nil
}

func (r *MemorySessionRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sessions[id]; !ok {
		return sql.ErrNoRows
	}
	r.s.deleteSessionLocked(id)
	return nil
}

func (s *MemoryStore) deleteSessionLocked(id int64) {
	delete(s.sessions, id)
	for tid, t := range s.tickets {
		if t.SessionID == id {
			delete(s.seatIndex, seatKey(t.SessionID, t.Row, t.Seat))
			delete(s.tickets, tid)
		}
	}
}

// ---- reservations ----

type MemoryReservationRepo struct{ s *MemoryStore }

func (r *MemoryReservationRepo) CreateWithTickets(ctx context.Context, reservation *models.Reservation, tickets []models.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// Occupancy check and insert under one lock, mirroring the transaction
	// boundary of the Postgres repository. The batch itself counts against
	// the uniqueness constraint too, exactly as sequential inserts would.
	batch := make(map[string]bool, len(tickets))
	for _, t := range tickets {
		key := seatKey(t.SessionID, t.Row, t.Seat)
		if _, taken := r.s.seatIndex[key]; taken || batch[key] {
			return &errs.SeatTakenError{SessionID: t.SessionID, Row: t.Row, Seat: t.Seat}
		}
		batch[key] = true
	}

	reservation.ID = r.s.id()
	reservation.CreatedAt = time.Now()
	cp := *reservation
	cp.Tickets = nil
	r.s.reservations[reservation.ID] = &cp

	for i := range tickets {
		tickets[i].ID = r.s.id()
		tickets[i].ReservationID = reservation.ID
		tcp := tickets[i]
		r.s.tickets[tcp.ID] = &tcp
		r.s.seatIndex[seatKey(tcp.SessionID, tcp.Row, tcp.Seat)] = tcp.ID
	}

	reservation.Tickets = tickets
	return nil
}

func (r *MemoryReservationRepo) TakenSeats(ctx context.Context, sessionID int64) ([]models.SeatRef, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var seats []models.SeatRef
	for _, t := range r.s.tickets {
		if t.SessionID == sessionID {
			seats = append(seats, models.SeatRef{Row: t.Row, Seat: t.Seat})
		}
	}
	sort.Slice(seats, func(i, j int) bool {
		if seats[i].Row != seats[j].Row {
			return seats[i].Row < seats[j].Row
		}
		return seats[i].Seat < seats[j].Seat
	})
	return seats, nil
}

func (r *MemoryReservationRepo) CountTickets(ctx context.Context, sessionID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, t := range r.s.tickets {
		if t.SessionID == sessionID {
			count++
		}
	}
	return count, nil
}

func (r *MemoryReservationRepo) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, ok := r.s.reservations[id]
	if !ok {
		return nil, nil
	}
	cp := *res
	for _, t := range r.s.tickets {
		if t.ReservationID == id {
			cp.Tickets = append(cp.Tickets, *t)
		}
	}
	sort.Slice(cp.Tickets, func(i, j int) bool {
		if cp.Tickets[i].Row != cp.Tickets[j].Row {
			return cp.Tickets[i].Row < cp.Tickets[j].Row
		}
		return cp.Tickets[i].Seat < cp.Tickets[j].Seat
	})
	return &cp, nil
}

func (r *MemoryReservationRepo) ListByUser(ctx context.Context, userID int64) ([]models.ReservationListItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	owner := ""
	if u, ok := r.s.users[userID]; ok {
		owner = u.Email
	}

	var items []models.ReservationListItem
	for _, res := range r.s.reservations {
		if res.UserID != userID {
			continue
		}
		item := models.ReservationListItem{ID: res.ID, CreatedAt: res.CreatedAt, Owner: owner}
		for _, t := range r.s.tickets {
			if t.ReservationID != res.ID {
				continue
			}
			detail := models.TicketDetail{ID: t.ID, Row: t.Row, Seat: t.Seat}
			if session, ok := r.s.sessions[t.SessionID]; ok {
				detail.ShowTime = session.ShowTime
				if show, ok := r.s.shows[session.ShowID]; ok {
					detail.ShowTitle = show.Title
				}
				if dome, ok := r.s.domes[session.DomeID]; ok {
					detail.DomeName = dome.Name
				}
			}
			item.Tickets = append(item.Tickets, detail)
		}
		sort.Slice(item.Tickets, func(i, j int) bool {
			if item.Tickets[i].Row != item.Tickets[j].Row {
				return item.Tickets[i].Row < item.Tickets[j].Row
			}
			return item.Tickets[i].Seat < item.Tickets[j].Seat
		})
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	return items, nil
}

func (r *MemoryReservationRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.reservations[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.s.reservations, id)
	for tid, t := range r.s.tickets {
		if t.ReservationID == id {
			delete(r.s.seatIndex, seatKey(t.SessionID, t.Row, t.Seat))
			delete(r.s.tickets, tid)
		}
	}
	return nil
}
