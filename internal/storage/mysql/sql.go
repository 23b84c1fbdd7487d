package mysql

const upsertHotelSQL = `
INSERT INTO hotels
  (hotel_id, name, address_line1, city, country, latitude, longitude,
   chain_name, star_rating, min_price, max_price, currency, primary_image_url)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name              = VALUES(name),
  address_line1     = VALUES(address_line1),
  city              = VALUES(city),
  country           = VALUES(country),
  latitude          = VALUES(latitude),
  longitude         = VALUES(longitude),
  chain_name        = COALESCE(VALUES(chain_name), hotels.chain_name),
  star_rating       = VALUES(star_rating),
  min_price         = VALUES(min_price),
  max_price         = VALUES(max_price),
  currency          = VALUES(currency),
  primary_image_url = VALUES(primary_image_url),
  updated_at        = CURRENT_TIMESTAMP
`

const upsertDailyRateSQL = `
INSERT INTO hotel_daily_rates
  (hotel_id, check_in_date, min_rate, max_rate, currency, room_types_count)
VALUES
  (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  min_rate         = VALUES(min_rate),
  max_rate         = VALUES(max_rate),
  currency         = VALUES(currency),
  room_types_count = VALUES(room_types_count),
  updated_at       = CURRENT_TIMESTAMP
`

// Insert-if-absent: room type rows are created once and never overwritten.
const insertRoomTypesPrefix = "INSERT IGNORE INTO room_types (hotel_id, room_id, name) VALUES "

const deleteRoomRatesSQL = `
DELETE FROM room_rates WHERE hotel_id = ? AND check_in_date = ?
`

const insertRoomRatesPrefix = "INSERT INTO room_rates\n" +
	"  (hotel_id, room_type_id, check_in_date, rate_id, base_rate, final_rate, currency, board_basis, is_refundable)\n" +
	"VALUES "

const insertImagesPrefix = "INSERT INTO hotel_images (hotel_id, room_type_id, image_url, image_order) VALUES "

const selectImageKeysSQL = `
SELECT room_type_id, image_url FROM hotel_images WHERE hotel_id = ?
`

const upsertSnapshotSQL = `
INSERT INTO hotel_snapshots (hotel_id, check_in_date, data)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE data = VALUES(data), updated_at = CURRENT_TIMESTAMP
`

const insertMissSQL = `
INSERT INTO scrape_misses (hotel_id, check_in_date, http_status, reason)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE http_status = VALUES(http_status), reason = VALUES(reason), seen_at = CURRENT_TIMESTAMP
`

// Recomputes the hotel row's aggregates over every stored daily rate;
// currency follows the most recent date on record.
const recomputeAggregatesSQL = `
UPDATE hotels SET
  min_price = (SELECT MIN(min_rate) FROM hotel_daily_rates WHERE hotel_id = ?),
  max_price = (SELECT MAX(max_rate) FROM hotel_daily_rates WHERE hotel_id = ?),
  currency  = (SELECT currency FROM hotel_daily_rates WHERE hotel_id = ? ORDER BY check_in_date DESC LIMIT 1),
  updated_at = CURRENT_TIMESTAMP
WHERE hotel_id = ?
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getHotelSQL = `
SELECT hotel_id, name, address_line1, city, country, latitude, longitude,
       chain_name, star_rating, min_price, max_price, currency, primary_image_url
FROM hotels
WHERE hotel_id = ?
`

const listDailyRatesSQL = `
SELECT hotel_id, check_in_date, min_rate, max_rate, currency, room_types_count
FROM hotel_daily_rates
WHERE hotel_id = ?
ORDER BY check_in_date
LIMIT ?
`

const listRoomRatesSQL = `
SELECT rt.room_id, rt.name, rr.rate_id, rr.base_rate, rr.final_rate,
       rr.currency, rr.board_basis, rr.is_refundable
FROM room_rates rr
JOIN room_types rt ON rt.id = rr.room_type_id
WHERE rr.hotel_id = ? AND rr.check_in_date = ?
ORDER BY rt.room_id, rr.rate_id
`

const listHotelsMissingChainSQL = `
SELECT hotel_id, name FROM hotels WHERE chain_name IS NULL ORDER BY hotel_id
`

const updateChainNameSQL = `
UPDATE hotels SET chain_name = ?, updated_at = CURRENT_TIMESTAMP WHERE hotel_id = ?
`

const listAllImagesSQL = `
SELECT id, hotel_id, room_type_id, image_url
FROM hotel_images
ORDER BY hotel_id, id
`
