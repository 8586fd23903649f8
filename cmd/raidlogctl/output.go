package main

import (
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/raidlog/raidlog/pkg/metrics"
	"github.com/raidlog/raidlog/pkg/reader"
)

func outputTable(records []reader.Record, meta reader.MetaRecord) error {
	fmt.Printf("head=%d msg_index=%d first_log_full=%d\n\n", meta.Head, meta.MsgIndex, meta.FirstLogFull)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "SECTOR\tSTATUS\tMIRROR\tHEADER\tCRC_STORED\tCRC_CALC\n")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%s\t%d\t%#02x\t%#08x\t%#08x\n",
			r.LogicalSector, r.Status, r.Mirror, r.Header, r.CRCStored, r.CRCCalc)
	}
	return w.Flush()
}

type jsonRecord struct {
	LogicalSector uint32 `json:"logical_sector"`
	Mirror        int    `json:"mirror"`
	Status        string `json:"status"`
	Header        byte   `json:"header"`
	PayloadHex    string `json:"payload_hex"`
	CRCStored     uint32 `json:"crc_stored"`
	CRCCalc       uint32 `json:"crc_calc"`
}

type jsonDump struct {
	Meta    reader.MetaRecord `json:"meta"`
	Records []jsonRecord      `json:"records"`
}

func outputJSON(records []reader.Record, meta reader.MetaRecord) error {
	dump := jsonDump{Meta: meta}
	for _, r := range records {
		dump.Records = append(dump.Records, jsonRecord{
			LogicalSector: r.LogicalSector,
			Mirror:        r.Mirror,
			Status:        r.Status.String(),
			Header:        r.Header,
			PayloadHex:    hex.EncodeToString(r.Payload[:]),
			CRCStored:     r.CRCStored,
			CRCCalc:       r.CRCCalc,
		})
	}
	b, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(append(b, '\n'))
	return err
}

// outputCSV writes payload.csv and meta.csv to the current directory,
// exactly the two files spec.md §6 names for the reference reader tool.
func outputCSV(records []reader.Record, meta reader.MetaRecord) error {
	pf, err := os.Create("payload.csv")
	if err != nil {
		return err
	}
	defer pf.Close()
	pw := csv.NewWriter(pf)
	if err := pw.Write([]string{"status", "header", "payload_hex", "crc_stored", "crc_calc"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Status.String(),
			fmt.Sprintf("%#02x", r.Header),
			hex.EncodeToString(r.Payload[:]),
			fmt.Sprintf("%#08x", r.CRCStored),
			fmt.Sprintf("%#08x", r.CRCCalc),
		}
		if err := pw.Write(row); err != nil {
			return err
		}
	}
	pw.Flush()
	if err := pw.Error(); err != nil {
		return err
	}

	mf, err := os.Create("meta.csv")
	if err != nil {
		return err
	}
	defer mf.Close()
	mw := csv.NewWriter(mf)
	if err := mw.Write([]string{"type", "last_sector", "last_msg", "is_first_full", "raw_hex"}); err != nil {
		return err
	}
	// One row per physical supersector mirror, matching the original
	// reader's sector0/sector1/sector2 dump: an invalid copy still gets a
	// row (raw hex only, decoded fields blank) since it's a data signal, not
	// an error.
	for _, mm := range meta.Mirrors {
		row := []string{fmt.Sprintf("supersector_mirror%d", mm.Mirror), "", "", "", mm.RawHex}
		if mm.Valid {
			row[1] = fmt.Sprintf("%d", mm.Head)
			row[2] = fmt.Sprintf("%d", mm.MsgIndex)
			row[3] = fmt.Sprintf("%d", mm.FirstLogFull)
		}
		if err := mw.Write(row); err != nil {
			return err
		}
	}
	mw.Flush()
	return mw.Error()
}

func outputMetrics(device string, records []reader.Record, meta reader.MetaRecord) error {
	return metrics.WriteOpenMetrics(os.Stdout, device, 3, records, meta)
}
