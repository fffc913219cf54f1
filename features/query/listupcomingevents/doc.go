// Package listupcomingevents lists the events of one calendar that overlap a mandatory time window.
package listupcomingevents
