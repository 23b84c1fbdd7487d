package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"travclan_rates/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullStr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
func nullF64(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

const dateLayout = "2006-01-02"

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertHotel(ctx context.Context, h domain.HotelRecord) error {
	_, err := r.db.ExecContext(ctx, upsertHotelSQL,
		h.HotelID,
		h.Name,
		valStr(h.AddressLine1),
		valStr(h.City),
		valStr(h.Country),
		valStr(h.Latitude),
		valStr(h.Longitude),
		valStr(h.ChainName),
		valStr(h.StarRating),
		valF64(h.MinPrice),
		valF64(h.MaxPrice),
		valStr(h.Currency),
		valStr(h.PrimaryImageURL),
	)
	return err
}

func (r *Repo) UpsertDailyRate(ctx context.Context, d domain.DailyRateRecord) error {
	_, err := r.db.ExecContext(ctx, upsertDailyRateSQL,
		d.HotelID,
		d.CheckInDate,
		valF64(d.MinRate),
		valF64(d.MaxRate),
		valStr(d.Currency),
		d.RoomTypesCount,
	)
	return err
}

func (r *Repo) InsertRoomTypes(ctx context.Context, rts []domain.RoomTypeRecord) error {
	if len(rts) == 0 {
		return nil
	}
	values := make([]string, 0, len(rts))
	args := make([]any, 0, len(rts)*3)
	for _, rt := range rts {
		values = append(values, "(?,?,?)")
		args = append(args, rt.HotelID, rt.RoomID, rt.Name)
	}
	_, err := r.db.ExecContext(ctx, insertRoomTypesPrefix+strings.Join(values, ","), args...)
	return err
}

func (r *Repo) RoomTypeIDs(ctx context.Context, hotelID string, roomIDs []string) (map[string]int64, error) {
	if len(roomIDs) == 0 {
		return map[string]int64{}, nil
	}
	ph := strings.TrimSuffix(strings.Repeat("?,", len(roomIDs)), ",")
	args := make([]any, 0, len(roomIDs)+1)
	args = append(args, hotelID)
	for _, id := range roomIDs {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT room_id, id FROM room_types WHERE hotel_id = ? AND room_id IN ("+ph+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64, len(roomIDs))
	for rows.Next() {
		var roomID string
		var id int64
		if err := rows.Scan(&roomID, &id); err != nil {
			return nil, err
		}
		out[roomID] = id
	}
	return out, rows.Err()
}

func (r *Repo) ReplaceRoomRates(ctx context.Context, hotelID, checkInDate string, rates []domain.ResolvedRoomRate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteRoomRatesSQL, hotelID, checkInDate); err != nil {
		return err
	}
	if len(rates) > 0 {
		values := make([]string, 0, len(rates))
		args := make([]any, 0, len(rates)*9)
		for _, rr := range rates {
			values = append(values, "(?,?,?,?,?,?,?,?,?)")
			args = append(args,
				rr.HotelID,
				rr.RoomTypeID,
				rr.CheckInDate,
				rr.RateID,
				rr.BaseRate,
				rr.FinalRate,
				rr.Currency,
				valStr(rr.BoardBasis),
				rr.IsRefundable,
			)
		}
		if _, err := tx.ExecContext(ctx, insertRoomRatesPrefix+strings.Join(values, ","), args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *Repo) ExistingImageKeys(ctx context.Context, hotelID string) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, selectImageKeysSQL, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]struct{}{}
	for rows.Next() {
		var typeID sql.NullInt64
		var url string
		if err := rows.Scan(&typeID, &url); err != nil {
			return nil, err
		}
		var tp *int64
		if typeID.Valid {
			v := typeID.Int64
			tp = &v
		}
		out[domain.ImageKey(hotelID, tp, url)] = struct{}{}
	}
	return out, rows.Err()
}

func (r *Repo) InsertImages(ctx context.Context, imgs []domain.ResolvedImage) error {
	if len(imgs) == 0 {
		return nil
	}
	values := make([]string, 0, len(imgs))
	args := make([]any, 0, len(imgs)*4)
	for _, img := range imgs {
		values = append(values, "(?,?,?,?)")
		args = append(args, img.HotelID, valInt64(img.RoomTypeID), img.ImageURL, img.ImageOrder)
	}
	_, err := r.db.ExecContext(ctx, insertImagesPrefix+strings.Join(values, ","), args...)
	return err
}

func (r *Repo) UpsertSnapshot(ctx context.Context, hotelID, checkInDate string, doc []byte) error {
	_, err := r.db.ExecContext(ctx, upsertSnapshotSQL, hotelID, checkInDate, string(doc))
	return err
}

func (r *Repo) LogMiss(ctx context.Context, hotelID, checkInDate string, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, hotelID, checkInDate, status, reason)
	return err
}

func (r *Repo) RecomputeHotelAggregates(ctx context.Context, hotelID string) error {
	_, err := r.db.ExecContext(ctx, recomputeAggregatesSQL, hotelID, hotelID, hotelID, hotelID)
	return err
}

func (r *Repo) GetHotel(ctx context.Context, hotelID string) (domain.HotelRecord, error) {
	row := r.db.QueryRowContext(ctx, getHotelSQL, hotelID)

	var h domain.HotelRecord
	var addr, city, country, lat, lon, chain, stars, currency, primary sql.NullString
	var minP, maxP sql.NullFloat64

	if err := row.Scan(
		&h.HotelID, &h.Name,
		&addr, &city, &country, &lat, &lon,
		&chain, &stars, &minP, &maxP, &currency, &primary,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.HotelRecord{}, domain.ErrNotFound
		}
		return domain.HotelRecord{}, err
	}

	h.AddressLine1 = nullStr(addr)
	h.City = nullStr(city)
	h.Country = nullStr(country)
	h.Latitude = nullStr(lat)
	h.Longitude = nullStr(lon)
	h.ChainName = nullStr(chain)
	h.StarRating = nullStr(stars)
	h.MinPrice = nullF64(minP)
	h.MaxPrice = nullF64(maxP)
	h.Currency = nullStr(currency)
	h.PrimaryImageURL = nullStr(primary)
	return h, nil
}

func (r *Repo) ListDailyRates(ctx context.Context, hotelID string, limit int) ([]domain.DailyRateRecord, error) {
	rows, err := r.db.QueryContext(ctx, listDailyRatesSQL, hotelID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DailyRateRecord
	for rows.Next() {
		var d domain.DailyRateRecord
		var date time.Time
		var minR, maxR sql.NullFloat64
		var currency sql.NullString
		if err := rows.Scan(&d.HotelID, &date, &minR, &maxR, &currency, &d.RoomTypesCount); err != nil {
			return nil, err
		}
		d.CheckInDate = date.Format(dateLayout)
		d.MinRate = nullF64(minR)
		d.MaxRate = nullF64(maxR)
		d.Currency = nullStr(currency)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) ListRoomRates(ctx context.Context, hotelID, checkInDate string) ([]domain.RoomRateView, error) {
	rows, err := r.db.QueryContext(ctx, listRoomRatesSQL, hotelID, checkInDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RoomRateView
	for rows.Next() {
		var v domain.RoomRateView
		var board sql.NullString
		if err := rows.Scan(&v.RoomID, &v.RoomName, &v.RateID, &v.BaseRate, &v.FinalRate,
			&v.Currency, &board, &v.IsRefundable); err != nil {
			return nil, err
		}
		v.BoardBasis = nullStr(board)
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repo) ListHotelsMissingChain(ctx context.Context) ([]domain.HotelRef, error) {
	rows, err := r.db.QueryContext(ctx, listHotelsMissingChainSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.HotelRef
	for rows.Next() {
		var h domain.HotelRef
		if err := rows.Scan(&h.HotelID, &h.Name); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateChainName(ctx context.Context, hotelID, chainName string) error {
	_, err := r.db.ExecContext(ctx, updateChainNameSQL, chainName, hotelID)
	return err
}

func (r *Repo) ListAllImages(ctx context.Context) ([]domain.StoredImage, error) {
	rows, err := r.db.QueryContext(ctx, listAllImagesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.StoredImage
	for rows.Next() {
		var img domain.StoredImage
		var typeID sql.NullInt64
		if err := rows.Scan(&img.ID, &img.HotelID, &typeID, &img.ImageURL); err != nil {
			return nil, err
		}
		if typeID.Valid {
			v := typeID.Int64
			img.RoomTypeID = &v
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

func (r *Repo) DeleteImages(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	ph := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := r.db.ExecContext(ctx, "DELETE FROM hotel_images WHERE id IN ("+ph+")", args...)
	return err
}
